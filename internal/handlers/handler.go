package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/mgltickets/api/internal/helpers"
	"github.com/mgltickets/api/internal/repositories"
)

const invalidInputMessage = "Invalid input. Please check your fields."

func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, invalidInputMessage)
		return false
	}
	return true
}

func pathID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := helpers.ParseIDParam(c, name)
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, err.Error())
		return uuid.Nil, false
	}
	return id, true
}

// listFilter reads the query parameters shared by every listing endpoint:
// page, limit, order and the created/updated bounds.
func listFilter(c *gin.Context) (filter repositories.Filter, pagination helpers.Pagination, ok bool) {
	pagination, err := helpers.ParsePagination(c)
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, err.Error())
		return repositories.Filter{}, pagination, false
	}

	filter = repositories.Filter{
		Order:  repositories.OrderDesc,
		Limit:  pagination.Limit,
		Offset: pagination.Offset,
	}
	switch order := helpers.LowerQuery(c, "order"); order {
	case "", string(repositories.OrderDesc):
	case string(repositories.OrderAsc):
		filter.Order = repositories.OrderAsc
	default:
		helpers.RespondWithError(c, http.StatusBadRequest, "invalid order, expected asc or desc")
		return filter, pagination, false
	}

	bounds := []struct {
		key string
		dst **time.Time
	}{
		{"created_after", &filter.CreatedAfter},
		{"created_before", &filter.CreatedBefore},
		{"updated_after", &filter.UpdatedAfter},
		{"updated_before", &filter.UpdatedBefore},
	}
	for _, bound := range bounds {
		value, err := helpers.ParseTimeQuery(c, bound.key)
		if err != nil {
			helpers.RespondWithError(c, http.StatusBadRequest, err.Error())
			return filter, pagination, false
		}
		*bound.dst = value
	}

	if filter.CreatedBetween, ok = dateRange(c, "created_from", "created_to"); !ok {
		return filter, pagination, false
	}
	if filter.UpdatedBetween, ok = dateRange(c, "updated_from", "updated_to"); !ok {
		return filter, pagination, false
	}
	return filter, pagination, true
}

// dateRange reads an inclusive range from two query keys. Either both are
// present or neither.
func dateRange(c *gin.Context, fromKey, toKey string) (*repositories.DateRange, bool) {
	from, err := helpers.ParseTimeQuery(c, fromKey)
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, err.Error())
		return nil, false
	}
	to, err := helpers.ParseTimeQuery(c, toKey)
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, err.Error())
		return nil, false
	}
	if from == nil && to == nil {
		return nil, true
	}
	if from == nil || to == nil {
		helpers.RespondWithError(c, http.StatusBadRequest, fromKey+" and "+toKey+" must be given together")
		return nil, false
	}
	return &repositories.DateRange{Start: *from, End: *to}, true
}

func paginated(c *gin.Context, key string, items interface{}, total int64, pagination helpers.Pagination) {
	c.JSON(http.StatusOK, gin.H{
		key:           items,
		"total":       total,
		"page":        pagination.Page,
		"limit":       pagination.Limit,
		"total_pages": pagination.TotalPages(total),
	})
}

func queryUUID(c *gin.Context, key string) (*uuid.UUID, bool) {
	id, err := helpers.ParseUUIDQuery(c, key)
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, err.Error())
		return nil, false
	}
	return id, true
}

func queryBool(c *gin.Context, key string) (*bool, bool) {
	value, err := helpers.ParseBoolQuery(c, key)
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, err.Error())
		return nil, false
	}
	return value, true
}

func queryLimit(c *gin.Context) (int, bool) {
	raw := c.DefaultQuery("limit", "10")
	limit, err := helpers.StringToInt(raw)
	if err != nil || limit < 1 {
		helpers.RespondWithError(c, http.StatusBadRequest, "invalid limit")
		return 0, false
	}
	return limit, true
}

package v1

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/smartenroll/backend/internal/types"
	se_uuid "github.com/smartenroll/backend/internal/uuid"
	"github.com/smartenroll/backend/pkg/auth"
)

const identityKey = "smartenroll.identity"

type URIID struct {
	ID se_uuid.UUID `uri:"id" binding:"required"` // The ID of the resource
}

// SetIdentity stores the authenticated user in the request context.
func SetIdentity(c *gin.Context, id auth.Identity) {
	c.Set(identityKey, id)
}

// CurrentIdentity returns the authenticated user of the request.
func CurrentIdentity(c *gin.Context) (auth.Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return auth.Identity{}, false
	}

	id, ok := v.(auth.Identity)
	return id, ok
}

// Document is returned when a document was rendered.
type Document struct {
	Path string `json:"path" example:"documents/Receipt_REC-20240610-0001.txt"`
}

type QueryLimit struct {
	Limit int `form:"limit" example:"10"`
}

type QuerySince struct {
	Since types.Date `form:"since" example:"2024-06-01"`
}

type QuerySearch struct {
	Query string `form:"q" example:"dela cruz"`
}

type QueryStrand struct {
	Strand string `form:"strand" example:"STEM"`
	Status string `form:"status" example:"Active"`
}

type QueryExcept struct {
	Except se_uuid.UUID `form:"except"` // Section whose room stays assignable
}

type QueryAcademicYear struct {
	AcademicYearID se_uuid.UUID `form:"academicYearId"`
}

type QueryReport struct {
	Kind  string `form:"kind" example:"total"`
	Range string `form:"range" example:"Last 7 Days"`
}

type QueryDateRange struct {
	From  types.Date `form:"from" example:"2024-06-01"`
	To    types.Date `form:"to" example:"2024-06-30"`
	Limit int        `form:"limit" example:"50"`
}

// bounds returns the range as optional times. To covers the whole day.
func (q QueryDateRange) bounds() (from, to *time.Time) {
	if !q.From.IsZero() {
		t := q.From.Time()
		from = &t
	}

	if !q.To.IsZero() {
		t := q.To.AddDays(1).Time().Add(-time.Nanosecond)
		to = &t
	}

	return from, to
}

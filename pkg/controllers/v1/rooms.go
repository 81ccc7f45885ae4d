package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/smartenroll/backend/pkg/httperrors"
	"github.com/smartenroll/backend/pkg/httputil"
	"github.com/smartenroll/backend/pkg/registrar"
)

// RegisterRoomRoutes registers the routes for rooms with
// the RouterGroup that is passed.
func (co Controller) RegisterRoomRoutes(r *gin.RouterGroup) {
	// Root group
	{
		r.OPTIONS("", httputil.OptionsGetPost)
		r.GET("", co.GetRooms)
		r.POST("", co.CreateRoom)
		r.GET("/active", co.GetActiveRooms)
		r.GET("/assignable", co.GetAssignableRooms)
	}

	// Room with ID
	{
		r.OPTIONS("/:id", httputil.OptionsGetPatchDelete)
		r.GET("/:id", co.GetRoom)
		r.PATCH("/:id", co.UpdateRoom)
		r.DELETE("/:id", co.DeleteRoom)
	}
}

// GetRooms lists all rooms ordered by room number.
func (co Controller) GetRooms(c *gin.Context) {
	rooms, err := co.Registrar.Rooms.ListAll(c.Request.Context())
	if err != nil {
		httperrors.Handler(c, err)
		return
	}

	respond(c, http.StatusOK, list(rooms))
}

func (co Controller) GetActiveRooms(c *gin.Context) {
	rooms, err := co.Registrar.Rooms.ListActive(c.Request.Context())
	if err != nil {
		httperrors.Handler(c, err)
		return
	}

	respond(c, http.StatusOK, list(rooms))
}

// GetAssignableRooms lists active rooms together with the section occupying them.
// The room of the section passed as "except" is reported as free.
func (co Controller) GetAssignableRooms(c *gin.Context) {
	var q QueryExcept
	if err := httputil.BindQuery(c, &q); err != nil {
		httperrors.Handler(c, err)
		return
	}

	rooms, err := co.Registrar.Rooms.ListForAssignment(c.Request.Context(), q.Except.Ptr())
	if err != nil {
		httperrors.Handler(c, err)
		return
	}

	respond(c, http.StatusOK, list(rooms))
}

func (co Controller) CreateRoom(c *gin.Context) {
	var in registrar.RoomInput
	if err := httputil.BindData(c, &in); err != nil {
		httperrors.Handler(c, err)
		return
	}

	room, err := co.Registrar.Rooms.Add(c.Request.Context(), in)
	if err != nil {
		httperrors.Handler(c, err)
		return
	}

	respond(c, http.StatusCreated, room)
}

func (co Controller) GetRoom(c *gin.Context) {
	id, ok := bindID(c)
	if !ok {
		return
	}

	room, err := co.Registrar.Rooms.GetByID(c.Request.Context(), id)
	if err != nil {
		httperrors.Handler(c, err)
		return
	}

	respond(c, http.StatusOK, room)
}

// UpdateRoom replaces all editable fields of a room.
func (co Controller) UpdateRoom(c *gin.Context) {
	id, ok := bindID(c)
	if !ok {
		return
	}

	var in registrar.RoomInput
	if err := httputil.BindData(c, &in); err != nil {
		httperrors.Handler(c, err)
		return
	}

	room, err := co.Registrar.Rooms.Update(c.Request.Context(), id, in)
	if err != nil {
		httperrors.Handler(c, err)
		return
	}

	respond(c, http.StatusOK, room)
}

func (co Controller) DeleteRoom(c *gin.Context) {
	id, ok := bindID(c)
	if !ok {
		return
	}

	if err := co.Registrar.Rooms.Delete(c.Request.Context(), id); err != nil {
		httperrors.Handler(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

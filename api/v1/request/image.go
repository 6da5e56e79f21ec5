package request

import "pixshelf/service"

type ReorderRequest struct {
	Updates []service.PositionUpdate `json:"updates" binding:"required,min=1,dive"`
}

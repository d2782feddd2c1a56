package dto

import (
	commonDto "anoa.com/learnhub/pkg/dto"
)

type ActivityFilter struct {
	Action     string `form:"action"`
	EntityType string `form:"entity_type"`
	ActorID    string `form:"actor_id" binding:"omitempty,uuid"`
	commonDto.PageQuery
}

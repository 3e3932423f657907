package mapper

import (
	"time"

	"voice-assistant-be/internal/dto"
	"voice-assistant-be/internal/entity"
	"voice-assistant-be/internal/model"

	"gorm.io/datatypes"
)

type EventMapper struct{}

func NewEventMapper() *EventMapper {
	return &EventMapper{}
}

func (m *EventMapper) ToEntity(e *model.Event) *entity.Event {
	if e == nil {
		return nil
	}

	var updatedAt *time.Time
	if !e.UpdatedAt.IsZero() {
		t := e.UpdatedAt
		updatedAt = &t
	}

	var metadata map[string]interface{}
	if len(e.Metadata) > 0 {
		metadata = make(map[string]interface{}, len(e.Metadata))
		for k, v := range e.Metadata {
			metadata[k] = v
		}
	}

	return &entity.Event{
		Id:          e.Id,
		UserId:      e.UserId,
		Summary:     e.Summary,
		Description: e.Description,
		Location:    e.Location,
		Start:       e.StartAt,
		End:         e.EndAt,
		Metadata:    metadata,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   updatedAt,
	}
}

func (m *EventMapper) ToModel(e *entity.Event) *model.Event {
	if e == nil {
		return nil
	}

	var updatedAt time.Time
	if e.UpdatedAt != nil {
		updatedAt = *e.UpdatedAt
	}

	var metadata datatypes.JSONMap
	if len(e.Metadata) > 0 {
		metadata = datatypes.JSONMap(e.Metadata)
	}

	return &model.Event{
		Id:          e.Id,
		UserId:      e.UserId,
		Summary:     e.Summary,
		Description: e.Description,
		Location:    e.Location,
		StartAt:     e.Start,
		EndAt:       e.End,
		Metadata:    metadata,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   updatedAt,
	}
}

func (m *EventMapper) ToEntities(events []*model.Event) []*entity.Event {
	entities := make([]*entity.Event, len(events))
	for i, e := range events {
		entities[i] = m.ToEntity(e)
	}
	return entities
}

func (m *EventMapper) ToModels(events []*entity.Event) []*model.Event {
	models := make([]*model.Event, len(events))
	for i, e := range events {
		models[i] = m.ToModel(e)
	}
	return models
}

func (m *EventMapper) ToResponse(e *entity.Event) *dto.EventResponse {
	if e == nil {
		return nil
	}
	return &dto.EventResponse{
		Id:          e.Id,
		Summary:     e.Summary,
		Description: e.Description,
		Location:    e.Location,
		Start:       e.Start,
		End:         e.End,
		Metadata:    e.Metadata,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

func (m *EventMapper) ToResponses(events []*entity.Event) []*dto.EventResponse {
	res := make([]*dto.EventResponse, len(events))
	for i, e := range events {
		res[i] = m.ToResponse(e)
	}
	return res
}

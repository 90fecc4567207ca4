package service

import (
	"context"
	"encoding/json"
	"fmt"
)

const eventProjection = `{
	title,
	date,
	description,
	backgroundImages,
	mapLink,
	category,
	attendees[]->{
		name,
		academicTitle,
		photoUrl
	}
}`

// EventService читает события из CMS
type EventService struct {
	store DocumentStore
}

// NewEventService создает сервис событий
func NewEventService(store DocumentStore) *EventService {
	return &EventService{store: store}
}

// ListEvents возвращает события, опционально только указанной категории.
// Документы отдаются как есть: портабл-текст, hotspot/crop изображений и
// неразрешенные ссылки attendees (null) не проходят через типизированные структуры.
func (s *EventService) ListEvents(ctx context.Context, category string) ([]json.RawMessage, error) {
	filter := `_type == "events"`
	params := map[string]any{}
	if category != "" {
		filter += ` && category == $category`
		params["category"] = category
	}

	query := fmt.Sprintf(`*[%s] | order(date desc) %s`, filter, eventProjection)

	var events []json.RawMessage
	if err := s.store.Fetch(ctx, query, params, &events); err != nil {
		return nil, fmt.Errorf("failed to fetch events: %w", err)
	}
	if events == nil {
		events = []json.RawMessage{}
	}
	return events, nil
}

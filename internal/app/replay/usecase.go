package replay

import (
	"context"
	"errors"

	"stagehand/internal/app/ports"
	"stagehand/internal/domain/troupe"
)

var ErrInvalidRequest = errors.New("invalid replay request")

const defaultLimit = 100

type UseCase struct {
	Events ports.EventRepository
}

type Request struct {
	Limit int
}

type Response struct {
	Events []troupe.DomainEvent `json:"events"`
}

func (u UseCase) Execute(ctx context.Context, req Request) (Response, error) {
	if req.Limit < 0 {
		return Response{}, ErrInvalidRequest
	}
	limit := req.Limit
	if limit == 0 {
		limit = defaultLimit
	}
	events, err := u.Events.List(ctx, limit)
	if err != nil {
		return Response{}, err
	}
	return Response{Events: events}, nil
}

package models

type Meta struct {
	Count int `json:"count"`
}

// ListResponse wraps every list endpoint.
type ListResponse[T any] struct {
	Data []T  `json:"data"`
	Meta Meta `json:"meta"`
}

func NewListResponse[T any](data []T) ListResponse[T] {
	if data == nil {
		data = []T{}
	}
	return ListResponse[T]{Data: data, Meta: Meta{Count: len(data)}}
}

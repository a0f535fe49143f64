package dto

import "github.com/GregMSThompson/findash-backend/internal/mapping"

type FieldsRequest struct {
	SelectorID string
	URL        string
	Search     string
	ArraysOnly bool
}

type FieldsResponse struct {
	Fields []mapping.FlattenedField `json:"fields"`
}

type TestEndpointRequest struct {
	URL string `json:"url"`
}

type TestEndpointResponse struct {
	Fields []mapping.FlattenedField `json:"fields"`
}

package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fredrikfh/Quizzma/internal/domain"
)

func TestError_Error(t *testing.T) {
	plain := ValidationError("name cannot be blank")
	assert.Equal(t, "validation: name cannot be blank", plain.Error())

	withCause := InternalError("query failed", fmt.Errorf("connection reset"))
	assert.Equal(t, "internal: query failed: connection reset", withCause.Error())
}

func TestError_HTTPStatus(t *testing.T) {
	tests := []struct {
		errType ErrorType
		want    int
	}{
		{TypeValidation, http.StatusBadRequest},
		{TypeUnauthorized, http.StatusForbidden},
		{TypeNotFound, http.StatusNotFound},
		{TypeConflict, http.StatusConflict},
		{TypeExhausted, http.StatusServiceUnavailable},
		{TypeExternal, http.StatusBadGateway},
		{TypeInternal, http.StatusInternalServerError},
		{ErrorType("unheard-of"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.errType), func(t *testing.T) {
			err := &Error{Type: tt.errType}
			assert.Equal(t, tt.want, err.HTTPStatus())
		})
	}
}

func TestError_WithContext(t *testing.T) {
	err := NotFoundError("quiz not found").WithContext("quiz_id", "abc")
	assert.Equal(t, "abc", err.Context["quiz_id"])

	response := err.ToResponse()
	assert.Equal(t, "quiz not found", response.Error)
	assert.Equal(t, TypeNotFound, response.Type)
	assert.Equal(t, "abc", response.Context["quiz_id"])
}

func TestAsStructuredError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorType
	}{
		{name: "quiz not found", err: domain.ErrQuizNotFound, want: TypeNotFound},
		{name: "question not found", err: domain.ErrQuestionNotFound, want: TypeNotFound},
		{name: "session not found", err: domain.ErrSessionNotFound, want: TypeNotFound},
		{name: "unauthorized", err: domain.ErrUnauthorized, want: TypeUnauthorized},
		{name: "id space exhausted", err: domain.ErrIDSpaceExhausted, want: TypeExhausted},
		{name: "no current question", err: domain.ErrNoCurrentQuestion, want: TypeValidation},
		{name: "unknown message type", err: domain.ErrUnknownMessageType, want: TypeValidation},
		{name: "wrapped sentinel", err: fmt.Errorf("loading quiz: %w", domain.ErrQuizNotFound), want: TypeNotFound},
		{name: "arbitrary error", err: fmt.Errorf("disk on fire"), want: TypeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			structured := AsStructuredError(tt.err)
			require.NotNil(t, structured)
			assert.Equal(t, tt.want, structured.Type)
		})
	}
}

func TestAsStructuredError_PassesThroughStructuredErrors(t *testing.T) {
	original := ExhaustedError("session is full")
	assert.Same(t, original, AsStructuredError(original))

	wrapped := fmt.Errorf("handling request: %w", original)
	assert.Same(t, original, AsStructuredError(wrapped))
}

func TestAsStructuredError_HidesInternalDetail(t *testing.T) {
	structured := AsStructuredError(fmt.Errorf("pq: password authentication failed"))
	assert.Equal(t, "internal server error", structured.Message)
	assert.NotContains(t, structured.ToResponse().Error, "password")
}

func TestAsStructuredError_Nil(t *testing.T) {
	assert.Nil(t, AsStructuredError(nil))
}

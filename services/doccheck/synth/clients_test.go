// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package synth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOllamaClient_Generate(t *testing.T) {
	var got ollamaGenerateRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(ollamaGenerateResponse{Model: got.Model, Response: "```python\ndef f(): ...\n```", Done: true})
	}))
	defer server.Close()

	temp := float32(0.2)
	client := NewOllamaClient(server.URL+"/", "llama3.1", time.Second)
	out, err := client.Generate(context.Background(), "prompt text", GenerationParams{Temperature: &temp})
	require.NoError(t, err)

	assert.Contains(t, out, "```python")
	assert.Equal(t, "llama3.1", got.Model)
	assert.Equal(t, "prompt text", got.Prompt)
	assert.False(t, got.Stream)
	assert.InDelta(t, 0.2, got.Options["temperature"], 0.0001)
}

func TestOllamaClient_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
		wantMsg string
	}{
		{
			name:    "model not found",
			status:  http.StatusNotFound,
			body:    `{"error":"model 'llama3.1' not found"}`,
			wantMsg: "ollama pull llama3.1",
		},
		{
			name:    "server error",
			status:  http.StatusInternalServerError,
			body:    "boom",
			wantMsg: "status 500: boom",
		},
		{
			name:    "empty response",
			status:  http.StatusOK,
			body:    `{"response":"   ","done":true}`,
			wantErr: ErrEmptyResponse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := NewOllamaClient(server.URL, "llama3.1", time.Second)
			_, err := client.Generate(context.Background(), "p", GenerationParams{})
			require.Error(t, err)

			var be *BackendError
			require.ErrorAs(t, err, &be)
			assert.Equal(t, BackendOllama, be.Backend)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			if tt.wantMsg != "" {
				assert.Contains(t, err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestOllamaClient_Canceled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewOllamaClient(server.URL, "m", time.Second).Generate(ctx, "p", GenerationParams{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestOpenAIClient_Generate(t *testing.T) {
	var got map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"c1","object":"chat.completion","model":"gpt-4o",` +
			`"choices":[{"index":0,"message":{"role":"assistant","content":"done"},"finish_reason":"stop"}]}`))
	}))
	defer server.Close()

	client := NewOpenAIClient("sk-test", server.URL+"/v1", "gpt-4o", time.Second)
	out, err := client.Generate(context.Background(), "hello", GenerationParams{})
	require.NoError(t, err)
	assert.Equal(t, "done", out)
	assert.Equal(t, "gpt-4o", got["model"])

	messages, ok := got["messages"].([]any)
	require.True(t, ok)
	require.Len(t, messages, 1)
	assert.Equal(t, "hello", messages[0].(map[string]any)["content"])
}

func TestOpenAIClient_EmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"c1","object":"chat.completion","choices":[]}`))
	}))
	defer server.Close()

	_, err := NewOpenAIClient("sk-test", server.URL+"/v1", "gpt-4o", time.Second).
		Generate(context.Background(), "hello", GenerationParams{})
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

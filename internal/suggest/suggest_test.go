package suggest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"songquiz/internal/quiz"
)

func TestParseSongList(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		want    []quiz.Suggestion
		wantErr bool
	}{
		{
			name: "clean array",
			text: `[{"title": "Eye of the Tiger", "artist": "Survivor"}, {"title": "Jump", "artist": "Van Halen"}]`,
			want: []quiz.Suggestion{
				{Title: "Eye of the Tiger", Artist: "Survivor"},
				{Title: "Jump", Artist: "Van Halen"},
			},
		},
		{
			name: "markdown fence",
			text: "```json\n[{\"title\": \"Jump\", \"artist\": \"Van Halen\"}]\n```",
			want: []quiz.Suggestion{{Title: "Jump", Artist: "Van Halen"}},
		},
		{
			name: "fence without language",
			text: "```\n[{\"title\": \"Jump\", \"artist\": \"Van Halen\"}]\n```",
			want: []quiz.Suggestion{{Title: "Jump", Artist: "Van Halen"}},
		},
		{
			name: "array wrapped in prose",
			text: "Here are the songs you asked for:\n[{\"title\": \"Jump\", \"artist\": \"Van Halen\"}]\nEnjoy the quiz!",
			want: []quiz.Suggestion{{Title: "Jump", Artist: "Van Halen"}},
		},
		{
			name: "entries missing keys dropped",
			text: `[{"title": "Jump", "artist": "Van Halen"}, {"title": "Orphan"}, {"artist": "Nobody"}, {"title": "", "artist": "Blank"}]`,
			want: []quiz.Suggestion{{Title: "Jump", Artist: "Van Halen"}},
		},
		{
			name: "whitespace trimmed",
			text: `[{"title": "  Jump  ", "artist": "  Van Halen  "}]`,
			want: []quiz.Suggestion{{Title: "Jump", Artist: "Van Halen"}},
		},
		{
			name: "non-string values tolerated",
			text: `[{"title": "Jump", "artist": "Van Halen", "year": 1984}, {"title": 42, "artist": "Numeric"}]`,
			want: []quiz.Suggestion{{Title: "Jump", Artist: "Van Halen"}},
		},
		{
			name:    "no array at all",
			text:    "I'm sorry, I can't help with that.",
			wantErr: true,
		},
		{
			name:    "empty array",
			text:    "[]",
			wantErr: true,
		},
		{
			name:    "all entries invalid",
			text:    `[{"name": "Jump", "band": "Van Halen"}]`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSongList(tt.text)
			if tt.wantErr {
				if !errors.Is(err, ErrGenerationFailed) {
					t.Fatalf("ParseSongList() error = %v, want ErrGenerationFailed", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseSongList() error = %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %d suggestions, want %d: %+v", len(got), len(tt.want), got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("suggestion %d = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestSystemPromptReflectsDifficulty(t *testing.T) {
	easy := systemPrompt(quiz.Easy)
	hard := systemPrompt(quiz.Hard)
	if easy == hard {
		t.Error("easy and hard system prompts are identical")
	}
	if !strings.Contains(easy, "70%") {
		t.Errorf("easy prompt missing hit percentage: %q", easy)
	}
	if !strings.Contains(hard, "50%") {
		t.Errorf("hard prompt missing deep cut percentage: %q", hard)
	}
}

func TestOpenAIGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("Authorization = %q", r.Header.Get("Authorization"))
		}

		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Model != "gpt-4.1-mini" {
			t.Errorf("model = %q", req.Model)
		}
		if req.Temperature != 0.8 {
			t.Errorf("temperature = %v", req.Temperature)
		}
		if len(req.Messages) != 2 || req.Messages[0].Role != "system" || req.Messages[1].Role != "user" {
			t.Errorf("unexpected messages %+v", req.Messages)
		}
		if !strings.Contains(req.Messages[1].Content, "80s rock") {
			t.Errorf("user message missing prompt: %q", req.Messages[1].Content)
		}

		resp := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{
					"content": "```json\n[{\"title\": \"Jump\", \"artist\": \"Van Halen\"}]\n```",
				}},
			},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	c := NewOpenAI("test-key", "")
	c.apiURL = srv.URL

	got, err := c.Generate(context.Background(), "80s rock", 10, quiz.Medium)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if len(got) != 1 || got[0].Title != "Jump" || got[0].Artist != "Van Halen" {
		t.Errorf("Generate() = %+v", got)
	}
}

func TestOpenAIGenerateAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"message": "invalid api key"},
		})
	}))
	defer srv.Close()

	c := NewOpenAI("bad-key", "")
	c.apiURL = srv.URL

	if _, err := c.Generate(context.Background(), "80s rock", 10, quiz.Medium); err == nil {
		t.Error("Generate() with API error returned nil error")
	}
}

func TestOpenAIGenerateUnparseableReply(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": "no songs for you"}},
			},
		})
	}))
	defer srv.Close()

	c := NewOpenAI("test-key", "")
	c.apiURL = srv.URL

	_, err := c.Generate(context.Background(), "80s rock", 10, quiz.Medium)
	if !errors.Is(err, ErrGenerationFailed) {
		t.Errorf("Generate() error = %v, want ErrGenerationFailed", err)
	}
}

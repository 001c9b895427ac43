package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/habitoapp/habito-server/internal/domain"
)

func (s *Server) registerNoteRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listNotes",
		Method:      http.MethodGet,
		Path:        "/api/v1/notes",
		Summary:     "List notes",
		Description: "Lists daily notes in an inclusive day range",
		Tags:        []string{"Notes"},
		Security:    bearer,
	}, s.handleListNotes)

	huma.Register(s.api, huma.Operation{
		OperationID: "getNotePrompt",
		Method:      http.MethodGet,
		Path:        "/api/v1/notes/prompt",
		Summary:     "Reflection prompt",
		Description: "Returns the reflection prompt for a day, today by default",
		Tags:        []string{"Notes"},
		Security:    bearer,
	}, s.handleGetNotePrompt)

	huma.Register(s.api, huma.Operation{
		OperationID: "getNote",
		Method:      http.MethodGet,
		Path:        "/api/v1/notes/{day}",
		Summary:     "Get note",
		Description: "Returns the note for a day. A day without one returns empty content.",
		Tags:        []string{"Notes"},
		Security:    bearer,
	}, s.handleGetNote)

	huma.Register(s.api, huma.Operation{
		OperationID: "saveNote",
		Method:      http.MethodPut,
		Path:        "/api/v1/notes/{day}",
		Summary:     "Save note",
		Description: "Writes the note for a day. Empty content deletes it.",
		Tags:        []string{"Notes"},
		Security:    bearer,
	}, s.handleSaveNote)
}

// NoteResponse is a daily note in API responses.
type NoteResponse struct {
	Day       string    `json:"day" doc:"Calendar day (YYYY-MM-DD)"`
	Content   string    `json:"content" doc:"Note text"`
	UpdatedAt time.Time `json:"updated_at,omitzero" doc:"Last write"`
}

// NoteOutput wraps a note for Huma.
type NoteOutput struct {
	Body NoteResponse
}

// ListNotesOutput wraps a note list for Huma.
type ListNotesOutput struct {
	Body struct {
		Notes []NoteResponse `json:"notes" doc:"Notes ordered by day"`
	}
}

// NoteDayInput identifies a note by day.
type NoteDayInput struct {
	Day string `path:"day" doc:"Calendar day (YYYY-MM-DD)"`
}

// SaveNoteInput wraps the save request for Huma.
type SaveNoteInput struct {
	Day  string `path:"day" doc:"Calendar day (YYYY-MM-DD)"`
	Body struct {
		Content string `json:"content" doc:"Note text, at most 500 characters"`
	}
}

// NotePromptInput selects the prompt's day.
type NotePromptInput struct {
	Day string `query:"day" doc:"Calendar day (YYYY-MM-DD), today by default"`
}

// NotePromptOutput wraps a prompt for Huma.
type NotePromptOutput struct {
	Body struct {
		Day    string `json:"day" doc:"Calendar day"`
		Prompt string `json:"prompt" doc:"Reflection question"`
	}
}

func (s *Server) handleListNotes(ctx context.Context, input *DayRangeInput) (*ListNotesOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}
	notes, err := s.services.Notes.List(ctx, userID, input.From, input.To)
	if err != nil {
		return nil, err
	}
	resp := &ListNotesOutput{}
	resp.Body.Notes = make([]NoteResponse, 0, len(notes))
	for _, n := range notes {
		resp.Body.Notes = append(resp.Body.Notes, mapNote(n))
	}
	return resp, nil
}

func (s *Server) handleGetNotePrompt(ctx context.Context, input *NotePromptInput) (*NotePromptOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}
	p, err := s.services.Notes.Prompt(ctx, userID, input.Day)
	if err != nil {
		return nil, err
	}
	resp := &NotePromptOutput{}
	resp.Body.Day = p.Day.String()
	resp.Body.Prompt = p.Prompt
	return resp, nil
}

func (s *Server) handleGetNote(ctx context.Context, input *NoteDayInput) (*NoteOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}
	note, err := s.services.Notes.Get(ctx, userID, input.Day)
	if err != nil {
		return nil, err
	}
	return &NoteOutput{Body: mapNote(note)}, nil
}

func (s *Server) handleSaveNote(ctx context.Context, input *SaveNoteInput) (*NoteOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}
	note, err := s.services.Notes.Save(ctx, userID, input.Day, input.Body.Content)
	if err != nil {
		return nil, err
	}
	return &NoteOutput{Body: mapNote(note)}, nil
}

func mapNote(n *domain.DailyNote) NoteResponse {
	return NoteResponse{Day: n.Day.String(), Content: n.Content, UpdatedAt: n.UpdatedAt}
}

package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/quizhub/quizhub/internal/api/dto"
	"github.com/quizhub/quizhub/internal/api/middleware"
	"github.com/quizhub/quizhub/internal/quiz"
)

type QuizHandler struct {
	quizService *quiz.Service
}

func NewQuizHandler(quizService *quiz.Service) *QuizHandler {
	return &QuizHandler{quizService: quizService}
}

// Create handles POST /api/v1/companies/:id/quizzes
func (h *QuizHandler) Create(w http.ResponseWriter, r *http.Request) {
	companyID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid company ID"})
		return
	}

	var req dto.CreateQuizRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}
	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errs})
		return
	}

	input := quiz.CreateInput{
		Name:        req.Name,
		Description: req.Description,
		Frequency:   req.Frequency,
	}
	for _, q := range req.Questions {
		input.Questions = append(input.Questions, quiz.QuestionInput{
			Text:        q.Text,
			Answers:     q.Answers,
			RightAnswer: q.RightAnswer,
		})
	}

	created, err := h.quizService.Create(r.Context(), middleware.GetCaller(r.Context()), companyID, input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// ListByCompany handles GET /api/v1/companies/:id/quizzes
func (h *QuizHandler) ListByCompany(w http.ResponseWriter, r *http.Request) {
	companyID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid company ID"})
		return
	}

	quizzes, err := h.quizService.ListByCompany(r.Context(), middleware.GetCaller(r.Context()), companyID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, quizzes)
}

// Get handles GET /api/v1/quizzes/:id
func (h *QuizHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid quiz ID"})
		return
	}

	found, err := h.quizService.Get(r.Context(), middleware.GetCaller(r.Context()), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, found)
}

// Update handles PUT /api/v1/quizzes/:id
func (h *QuizHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid quiz ID"})
		return
	}

	var req dto.UpdateQuizRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}
	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errs})
		return
	}

	updated, err := h.quizService.Update(r.Context(), middleware.GetCaller(r.Context()), id, quiz.UpdateInput{
		Name:        req.Name,
		Description: req.Description,
		Frequency:   req.Frequency,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// Delete handles DELETE /api/v1/quizzes/:id
func (h *QuizHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid quiz ID"})
		return
	}

	if err := h.quizService.Delete(r.Context(), middleware.GetCaller(r.Context()), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.SuccessResponse{Message: "Quiz deleted"})
}

// AddQuestion handles POST /api/v1/quizzes/:id/questions
func (h *QuizHandler) AddQuestion(w http.ResponseWriter, r *http.Request) {
	quizID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid quiz ID"})
		return
	}

	var req dto.QuestionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}
	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errs})
		return
	}

	question, err := h.quizService.AddQuestion(r.Context(), middleware.GetCaller(r.Context()), quizID, quiz.QuestionInput{
		Text:        req.Text,
		Answers:     req.Answers,
		RightAnswer: req.RightAnswer,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, question)
}

// DeleteQuestion handles DELETE /api/v1/questions/:id
func (h *QuizHandler) DeleteQuestion(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid question ID"})
		return
	}

	if err := h.quizService.DeleteQuestion(r.Context(), middleware.GetCaller(r.Context()), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.SuccessResponse{Message: "Question deleted"})
}

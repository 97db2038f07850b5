package web

import (
	"encoding/json"
	"errors"
	"html/template"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/abdulachik/litlens/internal/analysis"
	"github.com/abdulachik/litlens/internal/profile"
	"github.com/abdulachik/litlens/internal/render"
	"github.com/gorilla/csrf"
)

// User-facing messages.
const (
	msgWrongPassword = "비밀번호가 일치하지 않습니다."
	msgMissingKey    = "API Key를 입력해주세요."
	msgMissingText   = "내용을 모두 입력해주세요."
	msgErrorPrefix   = "오류: "
)

const (
	minSequenceCount = 3
	maxSequenceCount = 10
)

const docxContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

type pageData struct {
	CSRFField template.HTML
	CSS       template.CSS
	Error     string

	HasAPIKey       bool
	SequenceOptions []int
	Form            formData

	Output     string
	ResultJSON string
}

type formData struct {
	OriginalText  string
	LectureScript string
	SequenceCount int
}

// newPage builds the common page data, styled by profile p.
func (s *Server) newPage(r *http.Request, p *profile.Profile) *pageData {
	options := make([]int, 0, maxSequenceCount-minSequenceCount+1)
	for n := minSequenceCount; n <= maxSequenceCount; n++ {
		options = append(options, n)
	}

	data := &pageData{
		CSRFField:       csrf.TemplateField(r),
		CSS:             template.CSS(p.Theme.CSS),
		SequenceOptions: options,
	}
	if sess := SessionFrom(r.Context()); sess != nil {
		data.HasAPIKey = sess.APIKey() != ""
	}
	return data
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	sess := SessionFrom(r.Context())
	if !sess.Authenticated() {
		s.render(w, http.StatusOK, "gate", s.newPage(r, s.profiles.Current()))
		return
	}
	s.render(w, http.StatusOK, "analyze", s.newPage(r, s.profiles.Current()))
}

func (s *Server) handleGate(w http.ResponseWriter, r *http.Request) {
	sess := SessionFrom(r.Context())

	if !s.gate.Check(r.PostFormValue("password")) {
		slog.Warn("access gate rejected password", "remote", r.RemoteAddr)
		data := s.newPage(r, s.profiles.Current())
		data.Error = msgWrongPassword
		s.render(w, http.StatusUnauthorized, "gate", data)
		return
	}

	sess.SetAuthenticated(true)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.sessions.Drop(w, SessionFrom(r.Context()))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	sess := SessionFrom(r.Context())

	if key := strings.TrimSpace(r.PostFormValue("api_key")); key != "" {
		sess.SetAPIKey(key)
	}

	form := formData{
		OriginalText:  r.PostFormValue("original_text"),
		LectureScript: r.PostFormValue("lecture_script"),
		SequenceCount: parseSequenceCount(r.PostFormValue("sequence_count")),
	}

	// One snapshot styles the page, prompts the model and labels the output.
	p := s.profiles.Current()
	data := s.newPage(r, p)
	data.Form = form

	apiKey := sess.APIKey()
	switch {
	case apiKey == "":
		data.Error = msgMissingKey
		s.render(w, http.StatusUnprocessableEntity, "analyze", data)
		return
	case strings.TrimSpace(form.OriginalText) == "" || strings.TrimSpace(form.LectureScript) == "":
		data.Error = msgMissingText
		s.render(w, http.StatusUnprocessableEntity, "analyze", data)
		return
	}

	result, err := s.analyzer.AnalyzeWith(r.Context(), p, apiKey, analysis.Request{
		OriginalText:        form.OriginalText,
		LectureScript:       form.LectureScript,
		TargetSequenceCount: form.SequenceCount,
	})
	if err != nil {
		s.health.SetUnhealthy("analysis", err)
		data.Error = errorMessage(err)
		s.render(w, http.StatusBadGateway, "analyze", data)
		return
	}
	s.health.SetHealthy("analysis", "last analysis succeeded")

	encoded, err := json.Marshal(result)
	if err != nil {
		slog.Error("failed to encode result", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	data.Output = render.Text(result, p.Labels)
	data.ResultJSON = string(encoded)
	s.render(w, http.StatusOK, "analyze", data)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	result, err := analysis.ParseResult(r.PostFormValue("result_json"))
	if err != nil {
		http.Error(w, "invalid result", http.StatusBadRequest)
		return
	}

	labels := s.profiles.Current().Labels

	f, err := os.CreateTemp("", "litlens-*.docx")
	if err != nil {
		slog.Error("failed to create export file", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	path := f.Name()
	f.Close()
	defer os.Remove(path)

	if err := render.WriteDocx(result, labels, path); err != nil {
		slog.Error("failed to write docx", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	out, err := os.Open(path)
	if err != nil {
		slog.Error("failed to open export file", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	defer out.Close()

	filename := result.Title(labels.FallbackTitle) + ".docx"
	w.Header().Set("Content-Type", docxContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, out); err != nil {
		slog.Warn("export interrupted", "error", err)
	}
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, "ok")
}

func (s *Server) handleHealthComponents(w http.ResponseWriter, r *http.Request) {
	status := http.StatusOK
	if !s.health.IsOverallHealthy() {
		status = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(s.health.Statuses())
}

// parseSequenceCount accepts 3 to 10; anything else leaves the count to the
// model.
func parseSequenceCount(v string) int {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n < minSequenceCount || n > maxSequenceCount {
		return 0
	}
	return n
}

func errorMessage(err error) string {
	switch {
	case errors.Is(err, analysis.ErrMissingCredential):
		return msgMissingKey
	case errors.Is(err, analysis.ErrMissingText):
		return msgMissingText
	}
	return msgErrorPrefix + err.Error()
}

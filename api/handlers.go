package api

import (
	"io"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/pkg/errors"

	"github.com/mrsingh-rishi/vidscribe/language"
	"github.com/mrsingh-rishi/vidscribe/model"
	"github.com/mrsingh-rishi/vidscribe/output"
	"github.com/mrsingh-rishi/vidscribe/pipeline"
	"github.com/mrsingh-rishi/vidscribe/session"
	"github.com/mrsingh-rishi/vidscribe/types"
)

// headerSize is how much of an upload is handed to the validator for
// magic-byte detection.
const headerSize = 512

type errorBody struct {
	Kind    types.Kind `json:"kind"`
	Message string     `json:"message"`
}

type processResponse struct {
	InvocationID  string            `json:"invocation_id"`
	Transcript    string            `json:"transcript,omitempty"`
	Translations  map[string]string `json:"translations,omitempty"`
	Failures      map[string]string `json:"failures,omitempty"`
	AudioDuration float64           `json:"audio_duration_seconds,omitempty"`
	ElapsedMS     int64             `json:"elapsed_ms"`
	Error         *errorBody        `json:"error,omitempty"`
}

type sessionResponse struct {
	ID      string `json:"id"`
	Running bool   `json:"running"`
	model.Snapshot
}

func errorJSON(c *fiber.Ctx, status int, kind types.Kind, msg string) error {
	return c.Status(status).JSON(fiber.Map{"error": errorBody{Kind: kind, Message: msg}})
}

func (s *Server) handleLanguages(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"languages": language.Catalog})
}

func (s *Server) handleProcess(c *fiber.Ctx) error {
	st := currentSession(c)

	fh, err := c.FormFile("file")
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, types.KindValidation, "a video file is required")
	}

	var requested []string
	if form, err := c.MultipartForm(); err == nil {
		requested = form.Value["languages"]
	}
	languages := make([]string, 0, len(requested))
	for _, l := range requested {
		canonical, ok := language.Lookup(l)
		if !ok {
			return errorJSON(c, fiber.StatusBadRequest, types.KindValidation, "unsupported language: "+language.Sanitize(l))
		}
		languages = append(languages, canonical)
	}

	f, err := fh.Open()
	if err != nil {
		s.logger.Printf("❌ open upload %q: %v", fh.Filename, err)
		return errorJSON(c, fiber.StatusBadRequest, types.KindValidation, "could not read the uploaded file")
	}
	defer f.Close()

	header := make([]byte, headerSize)
	n, err := io.ReadFull(f, header)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return errorJSON(c, fiber.StatusBadRequest, types.KindValidation, "could not read the uploaded file")
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, types.KindValidation, "could not read the uploaded file")
	}

	res := s.runner.Run(c.UserContext(), st, pipeline.Request{
		Media: model.UploadedMedia{
			Filename:     fh.Filename,
			Size:         fh.Size,
			DeclaredType: fh.Header.Get(fiber.HeaderContentType),
			Header:       header[:n],
			Content:      f,
		},
		Languages: languages,
	})
	return c.Status(statusFor(res.Err)).JSON(newProcessResponse(res))
}

func newProcessResponse(res pipeline.Result) processResponse {
	resp := processResponse{
		InvocationID:  res.InvocationID,
		Transcript:    res.Transcript,
		Translations:  res.Translations,
		AudioDuration: res.AudioDuration,
		ElapsedMS:     res.Elapsed.Milliseconds(),
	}
	if len(res.Failures) > 0 {
		resp.Failures = make(map[string]string, len(res.Failures))
		for lang, err := range res.Failures {
			resp.Failures[lang] = failureMessage(err)
		}
	}
	if res.Err != nil {
		resp.Error = &errorBody{Kind: res.Err.Kind, Message: res.Err.UserMessage()}
	}
	return resp
}

func failureMessage(err error) string {
	var pe *types.PipelineError
	if errors.As(err, &pe) {
		return pe.UserMessage()
	}
	return err.Error()
}

// statusFor maps a pipeline failure to its HTTP status.
func statusFor(err *types.PipelineError) int {
	if err == nil {
		return fiber.StatusOK
	}
	switch err.Kind {
	case types.KindValidation:
		return fiber.StatusBadRequest
	case types.KindThrottleDenied:
		return fiber.StatusTooManyRequests
	case types.KindMediaProcessing:
		return fiber.StatusUnprocessableEntity
	case types.KindTranscription:
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

func (s *Server) handleSession(c *fiber.Ctx) error {
	st := currentSession(c)
	return c.JSON(sessionResponse{ID: st.ID, Running: st.Running(), Snapshot: st.Snapshot()})
}

func (s *Server) handleEndSession(c *fiber.Ctx) error {
	s.sessions.End(currentSession(c).ID)
	c.ClearCookie(session.CookieName)
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) handleTranscript(c *fiber.Ctx) error {
	text, ok := currentSession(c).Transcript()
	if !ok {
		return fiber.NewError(fiber.StatusNotFound, "no transcript yet")
	}
	c.Attachment(language.TranscriptFileName)
	return c.SendString(text)
}

func (s *Server) handleTranslation(c *fiber.Ctx) error {
	st := currentSession(c)
	label := c.Params("language")
	text, ok := st.Translation(label)
	if !ok {
		if canonical, found := language.Lookup(label); found {
			label = canonical
			text, ok = st.Translation(canonical)
		}
	}
	if !ok {
		return fiber.NewError(fiber.StatusNotFound, "no translation for "+language.Sanitize(label))
	}
	c.Attachment(language.TranslationFileName(label))
	return c.SendString(text)
}

func (s *Server) handleProgress(ws *websocket.Conn) {
	defer ws.Close()
	st, ok := ws.Locals(localSession).(*session.State)
	if !ok {
		return
	}
	if !st.AttachReader() {
		ws.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "a progress stream is already open for this session"))
		return
	}
	defer st.DetachReader()

	out, err := output.NewProgressOutput(ws, st.Events, s.pollInterval, s.logger)
	if err != nil {
		s.logger.Printf("❌ progress output: %v", err)
		return
	}
	out.Start()
	s.logger.Printf("📡 progress stream for session %s connected", st.ID)
	defer func() {
		out.Stop()
		<-out.Done()
		s.logger.Printf("📡 progress stream for session %s closed", st.ID)
	}()

	// Nothing is expected from the client; reading detects when it leaves.
	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			return
		}
	}
}

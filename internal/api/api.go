// Package api serves the conversion pipeline over HTTP. A statement is
// uploaded together with the bank name and, when the bank needs it, a master
// code table; the converted table is returned as a download.
package api

import (
	"bytes"
	"errors"
	"fmt"
	"mime/multipart"
	"os"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/labstack/gommon/log"

	"github.com/cleared-dev/stmtconv/internal/buildinfo"
	"github.com/cleared-dev/stmtconv/internal/codes"
	"github.com/cleared-dev/stmtconv/internal/importer"
	"github.com/cleared-dev/stmtconv/internal/output"
	"github.com/cleared-dev/stmtconv/internal/pipeline"
	"github.com/cleared-dev/stmtconv/internal/profile"
)

// MaxUploadSize caps the request body of a conversion.
const MaxUploadSize = 32 << 20

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	File    string `json:"file,omitempty"`
}

// HealthResponse is returned by GET /api/health.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// ProfileInfo describes one bank profile in GET /api/profiles.
type ProfileInfo struct {
	Name           string   `json:"name"`
	DisplayName    string   `json:"display_name"`
	Lookup         string   `json:"lookup"`
	RequiresLookup bool     `json:"requires_lookup"`
	Columns        []string `json:"columns"`
}

// Server holds what the handlers need.
type Server struct {
	Registry *profile.Registry
	Log      *log.Logger
}

// New returns a fiber app with all routes registered.
func New(reg *profile.Registry, logger *log.Logger) *fiber.App {
	if logger == nil {
		logger = log.New("api")
		logger.SetOutput(os.Stderr)
		logger.SetHeader("${level}")
	}
	s := &Server{Registry: reg, Log: logger}

	app := fiber.New(fiber.Config{
		AppName:               "stmtconv",
		BodyLimit:             MaxUploadSize,
		DisableStartupMessage: true,
		ErrorHandler:          s.handleError,
	})
	app.Get("/api/health", s.HandleHealth)
	app.Get("/api/profiles", s.HandleProfiles)
	app.Post("/api/convert", s.HandleConvert)
	return app
}

// HandleHealth reports that the server is up.
func (s *Server) HandleHealth(c *fiber.Ctx) error {
	return c.JSON(HealthResponse{Status: "ok", Version: buildinfo.Version})
}

// HandleProfiles lists the registered bank profiles.
func (s *Server) HandleProfiles(c *fiber.Ctx) error {
	names := s.Registry.Names()
	infos := make([]ProfileInfo, 0, len(names))
	for _, name := range names {
		p := s.Registry.Get(name)
		cols := make([]string, len(p.Schema))
		for i, col := range p.Schema {
			cols[i] = col.Header
		}
		infos = append(infos, ProfileInfo{
			Name:           p.Name,
			DisplayName:    p.DisplayName,
			Lookup:         string(p.Lookup),
			RequiresLookup: p.RequiresLookup,
			Columns:        cols,
		})
	}
	return c.JSON(infos)
}

// HandleConvert converts one uploaded statement. Form fields: file (required),
// bank (required), codes (file, required by banks that look codes up) and
// format (xlsx or csv, default xlsx).
func (s *Server) HandleConvert(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "", "no file uploaded")
	}

	format, err := output.ParseFormat(c.FormValue("format"))
	if err != nil {
		return fail(c, fiber.StatusBadRequest, fh.Filename, err.Error())
	}

	sel := profile.NewSelection(s.Registry)
	if err := sel.Select(c.FormValue("bank")); err != nil {
		return fail(c, fiber.StatusBadRequest, fh.Filename, err.Error())
	}

	var table *codes.Table
	if ch, err := c.FormFile("codes"); err == nil {
		table, err = readCodes(ch)
		if err != nil {
			return fail(c, fiber.StatusBadRequest, ch.Filename, err.Error())
		}
		for _, dup := range table.Duplicates() {
			s.Log.Warnf("%s: duplicate code %s, last description wins", ch.Filename, dup)
		}
	}

	loaded, err := sel.Load(table)
	if err != nil {
		return fail(c, fiber.StatusBadRequest, fh.Filename, err.Error())
	}
	if table != nil && loaded.Codes == nil {
		s.Log.Warnf("%s does not use a code table, ignoring upload", loaded.Profile.Name)
	}

	f, err := fh.Open()
	if err != nil {
		return fail(c, fiber.StatusBadRequest, fh.Filename, fmt.Sprintf("opening upload: %v", err))
	}
	defer f.Close()

	res, err := pipeline.Process(fh.Filename, f, loaded)
	if err != nil {
		s.Log.Errorf("convert %s: %v", fh.Filename, err)
		return fail(c, statusFor(err), fh.Filename, err.Error())
	}
	for _, pe := range res.ParseErrors {
		s.Log.Warnf("%s: %v", fh.Filename, pe)
	}

	var buf bytes.Buffer
	if err := output.Write(&buf, format, res.Schema, res.Rows); err != nil {
		return fmt.Errorf("writing %s: %w", fh.Filename, err)
	}

	s.Log.Infof("converted %s with %s: %d rows (%d coded, %d uncoded)",
		fh.Filename, res.Profile, len(res.Rows), res.Coded, res.Uncoded)

	c.Attachment(output.FileName(fh.Filename, res.Profile, format))
	c.Set(fiber.HeaderContentType, format.ContentType())
	c.Set("X-Rows", strconv.Itoa(len(res.Rows)))
	c.Set("X-Coded", strconv.Itoa(res.Coded))
	c.Set("X-Uncoded", strconv.Itoa(res.Uncoded))
	c.Set("X-Parse-Errors", strconv.Itoa(len(res.ParseErrors)))
	return c.Send(buf.Bytes())
}

func readCodes(fh *multipart.FileHeader) (*codes.Table, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("opening code table: %w", err)
	}
	defer f.Close()
	return codes.Read(fh.Filename, f)
}

// statusFor maps pipeline failures to HTTP statuses. Files that cannot be
// read as the chosen bank are unprocessable; a bad setup is the caller's.
func statusFor(err error) int {
	var (
		se *importer.StructuralError
		ve *pipeline.ValidationError
		ce *profile.ConfigurationError
	)
	switch {
	case errors.As(err, &ce):
		return fiber.StatusBadRequest
	case errors.As(err, &se), errors.As(err, &ve):
		return fiber.StatusUnprocessableEntity
	}
	return fiber.StatusInternalServerError
}

func fail(c *fiber.Ctx, status int, file, msg string) error {
	return c.Status(status).JSON(ErrorResponse{Success: false, Error: msg, File: file})
}

func (s *Server) handleError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		status = fe.Code
	}
	if status >= fiber.StatusInternalServerError {
		s.Log.Errorf("%s %s: %v", c.Method(), c.Path(), err)
	}
	return fail(c, status, "", err.Error())
}

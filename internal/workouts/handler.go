package workouts

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/2beens/gymbalance/internal/telemetry/tracing"
	"github.com/2beens/gymbalance/pkg"

	log "github.com/sirupsen/logrus"
)

const indexTemplate = "index.html"

type CatalogResponse struct {
	Exercises    []string      `json:"exercises"`
	MuscleGroups []MuscleGroup `json:"muscle_groups"`
	Limits       Limits        `json:"limits"`
}

type EntriesListResponse struct {
	Entries []Entry `json:"entries"`
	Total   int     `json:"total"`
}

type saveRequest struct {
	Date     string  `json:"date"`
	Exercise string  `json:"exercise"`
	Sets     int     `json:"sets"`
	Reps     int     `json:"reps"`
	Weight   float64 `json:"weight"`
}

type volumeBar struct {
	VolumeRow
	Percent   int
	Neglected bool
}

type indexPage struct {
	Today     string
	Start     string
	End       string
	Exercises []string
	Limits    Limits
	Saved     string
	Error     string
	Summary   *Summary
	Bars      []volumeBar
	Entries   []Entry
}

type Handler struct {
	service   *Service
	templates *template.Template
	now       func() time.Time
}

func NewHandler(service *Service, templates *template.Template) *Handler {
	return &Handler{
		service:   service,
		templates: templates,
		now:       time.Now,
	}
}

// HandleIndex renders the entry form and the summary for the requested range.
func (handler *Handler) HandleIndex(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.index")
	defer span.End()

	start, end, err := handler.parseRange(r.URL.Query(), "start", "end")
	if err != nil {
		http.Error(w, fmt.Sprintf("error, %s", err), http.StatusBadRequest)
		return
	}

	page := indexPage{
		Today:     pkg.DateOnly(handler.now()).Format(pkg.DateLayout),
		Start:     start.Format(pkg.DateLayout),
		End:       end.Format(pkg.DateLayout),
		Exercises: handler.service.Catalog().ExerciseNames(),
		Limits:    handler.service.Limits(),
		Saved:     r.URL.Query().Get("saved"),
	}

	status := http.StatusOK
	summary, err := handler.service.Summarize(ctx, start, end)
	if err != nil {
		log.Errorf("index: summarize [%s, %s]: %s", page.Start, page.End, err)
		page.Error = userMessage(err, "failed to build the weekly summary")
		status = statusCode(err)
	} else {
		page.Summary = summary
		page.Bars = volumeBars(summary)
		if page.Entries, err = handler.service.ListEntries(ctx, ListParams{}); err != nil {
			log.Errorf("index: list entries: %s", err)
			page.Error = userMessage(err, "failed to list entries")
			status = statusCode(err)
		}
	}

	var buf bytes.Buffer
	if err := handler.templates.ExecuteTemplate(&buf, indexTemplate, page); err != nil {
		log.Errorf("index: execute template: %s", err)
		http.Error(w, "error, failed to render page", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.HTML, buf.Bytes(), status)
}

func (handler *Handler) HandleCatalog(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.catalog")
	defer span.End()

	catalog := handler.service.Catalog()
	resJson, err := json.Marshal(CatalogResponse{
		Exercises:    catalog.ExerciseNames(),
		MuscleGroups: catalog.MuscleGroupOrder(),
		Limits:       handler.service.Limits(),
	})
	if err != nil {
		log.Errorf("marshal catalog: %s", err)
		http.Error(w, "error, failed to get catalog", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, resJson)
}

// HandleSave accepts a JSON body or a submitted form. Forms are answered with a
// redirect back to the index page carrying the confirmation message.
func (handler *Handler) HandleSave(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.save")
	defer span.End()

	isJSON := strings.HasPrefix(r.Header.Get("Content-Type"), "application/json")

	var req saveRequest
	if isJSON {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Errorf("save entry, unmarshal json params: %s", err)
			http.Error(w, "error, invalid json body", http.StatusBadRequest)
			return
		}
	} else {
		var err error
		if req, err = parseSaveForm(r); err != nil {
			http.Error(w, fmt.Sprintf("error, %s", err), http.StatusBadRequest)
			return
		}
	}

	params := SaveParams{
		Exercise: strings.TrimSpace(req.Exercise),
		Sets:     req.Sets,
		Reps:     req.Reps,
		Weight:   req.Weight,
	}
	if params.Exercise == "" {
		http.Error(w, "error, exercise empty", http.StatusBadRequest)
		return
	}
	if req.Date == "" {
		params.Date = pkg.DateOnly(handler.now())
	} else {
		date, err := pkg.ParseDate(strings.TrimSpace(req.Date))
		if err != nil {
			http.Error(w, fmt.Sprintf("error, invalid date [%s]", req.Date), http.StatusBadRequest)
			return
		}
		params.Date = date
	}

	confirmation, err := handler.service.Save(ctx, params)
	if err != nil {
		log.Errorf("save entry [%s]: %s", params.Exercise, err)
		http.Error(w, "error, "+userMessage(err, "failed to save entry"), statusCode(err))
		return
	}

	log.Debugf("entry saved: %s", confirmation.Message)

	if !isJSON {
		http.Redirect(w, r, "/?saved="+url.QueryEscape(confirmation.Message), http.StatusSeeOther)
		return
	}

	confJson, err := json.Marshal(confirmation)
	if err != nil {
		log.Errorf("marshal save confirmation: %s", err)
		http.Error(w, "error, failed to save entry", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, confJson, http.StatusCreated)
}

func (handler *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.list")
	defer span.End()

	var params ListParams
	for name, target := range map[string]**time.Time{"from": &params.From, "to": &params.To} {
		value := r.URL.Query().Get(name)
		if value == "" {
			continue
		}
		date, err := pkg.ParseDate(value)
		if err != nil {
			http.Error(w, fmt.Sprintf("error, invalid %s date [%s]", name, value), http.StatusBadRequest)
			return
		}
		*target = &date
	}

	entries, err := handler.service.ListEntries(ctx, params)
	if err != nil {
		log.Errorf("list entries: %s", err)
		http.Error(w, "error, "+userMessage(err, "failed to list entries"), statusCode(err))
		return
	}

	resJson, err := json.Marshal(EntriesListResponse{
		Entries: entries,
		Total:   len(entries),
	})
	if err != nil {
		log.Errorf("marshal entries: %s", err)
		http.Error(w, "error, failed to list entries", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, resJson)
}

func (handler *Handler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.summary")
	defer span.End()

	start, end, err := handler.parseRange(r.URL.Query(), "start", "end")
	if err != nil {
		http.Error(w, fmt.Sprintf("error, %s", err), http.StatusBadRequest)
		return
	}

	summary, err := handler.service.Summarize(ctx, start, end)
	if err != nil {
		log.Errorf("summarize [%s, %s]: %s", start.Format(pkg.DateLayout), end.Format(pkg.DateLayout), err)
		http.Error(w, "error, "+userMessage(err, "failed to get summary"), statusCode(err))
		return
	}

	summaryJson, err := json.Marshal(summary)
	if err != nil {
		log.Errorf("marshal summary: %s", err)
		http.Error(w, "error, failed to get summary", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, summaryJson)
}

// HandleExport returns the summary and the entries of the requested range as an xlsx workbook.
func (handler *Handler) HandleExport(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.export")
	defer span.End()

	start, end, err := handler.parseRange(r.URL.Query(), "start", "end")
	if err != nil {
		http.Error(w, fmt.Sprintf("error, %s", err), http.StatusBadRequest)
		return
	}

	summary, err := handler.service.Summarize(ctx, start, end)
	if err != nil {
		log.Errorf("export: summarize: %s", err)
		http.Error(w, "error, "+userMessage(err, "failed to export"), statusCode(err))
		return
	}
	entries, err := handler.service.ListEntries(ctx, ListParams{From: &start, To: &end})
	if err != nil {
		log.Errorf("export: list entries: %s", err)
		http.Error(w, "error, "+userMessage(err, "failed to export"), statusCode(err))
		return
	}

	var buf bytes.Buffer
	if err := WriteWorkbook(&buf, summary, entries); err != nil {
		log.Errorf("export: write workbook: %s", err)
		http.Error(w, "error, failed to export", http.StatusInternalServerError)
		return
	}

	w.Header().Set(
		"Content-Disposition",
		fmt.Sprintf(`attachment; filename="workouts_%s_%s.xlsx"`, start.Format(pkg.DateLayout), end.Format(pkg.DateLayout)),
	)
	pkg.WriteResponseBytesOK(w, pkg.ContentType.XLSX, buf.Bytes())
}

// parseRange reads a date range from the query; a missing bound falls back to the default range.
func (handler *Handler) parseRange(query url.Values, startKey, endKey string) (time.Time, time.Time, error) {
	start, end := DefaultRange(handler.now())
	if value := query.Get(startKey); value != "" {
		date, err := pkg.ParseDate(value)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid %s date [%s]", startKey, value)
		}
		start = date
	}
	if value := query.Get(endKey); value != "" {
		date, err := pkg.ParseDate(value)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid %s date [%s]", endKey, value)
		}
		end = date
	}
	return start, end, nil
}

func parseSaveForm(r *http.Request) (saveRequest, error) {
	if err := r.ParseForm(); err != nil {
		return saveRequest{}, fmt.Errorf("parse form: %w", err)
	}

	req := saveRequest{
		Date:     r.PostForm.Get("date"),
		Exercise: r.PostForm.Get("exercise"),
	}
	var err error
	if req.Sets, err = strconv.Atoi(r.PostForm.Get("sets")); err != nil {
		return saveRequest{}, errors.New("sets NaN")
	}
	if req.Reps, err = strconv.Atoi(r.PostForm.Get("reps")); err != nil {
		return saveRequest{}, errors.New("reps NaN")
	}
	weight := r.PostForm.Get("weight")
	if weight == "" {
		weight = "0"
	}
	if req.Weight, err = strconv.ParseFloat(weight, 64); err != nil {
		return saveRequest{}, errors.New("weight NaN")
	}
	return req, nil
}

func volumeBars(summary *Summary) []volumeBar {
	maxVolume := 0.0
	for _, row := range summary.Rows {
		maxVolume = math.Max(maxVolume, row.TotalVolume)
	}
	neglected := make(map[MuscleGroup]bool, len(summary.Neglected))
	for _, g := range summary.Neglected {
		neglected[g] = true
	}

	bars := make([]volumeBar, 0, len(summary.Rows))
	for _, row := range summary.Rows {
		percent := 0
		if maxVolume > 0 {
			percent = int(math.Round(row.TotalVolume / maxVolume * 100))
		}
		bars = append(bars, volumeBar{
			VolumeRow: row,
			Percent:   percent,
			Neglected: neglected[row.MuscleGroup],
		})
	}
	return bars
}

func statusCode(err error) int {
	switch {
	case errors.Is(err, ErrInputOutOfRange), errors.Is(err, ErrInvalidDate):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func userMessage(err error, fallback string) string {
	switch {
	case errors.Is(err, ErrInputOutOfRange), errors.Is(err, ErrInvalidDate):
		return err.Error()
	case errors.Is(err, ErrStorageCorrupt):
		return fmt.Sprintf("workout storage is corrupt: %s", err)
	default:
		return fallback
	}
}

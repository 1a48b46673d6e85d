package ui

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"io"
	"math"
	"net/http"

	"github.com/gin-gonic/gin"

	"surveyinsight/app"
	"surveyinsight/domain/core"
	"surveyinsight/domain/survey"
	"surveyinsight/internal/errors"
	"surveyinsight/internal/report"
	"surveyinsight/internal/segment"
)

// splitView is the wire form of a median split; the per-row labels stay server side
type splitView struct {
	Column    string   `json:"column"`
	Median    *float64 `json:"median"`
	LowCount  int      `json:"low_count"`
	HighCount int      `json:"high_count"`
}

type insightsResponse struct {
	RunID              core.RunID              `json:"run_id"`
	StartedAt          core.Timestamp          `json:"started_at"`
	Fingerprint        core.DatasetFingerprint `json:"dataset_fingerprint"`
	ClassificationHash core.ClassificationHash `json:"classification_hash"`
	Splits             []splitView             `json:"splits"`
	Insights           []survey.Insight        `json:"insights"`
	Stats              segment.RunStats        `json:"stats"`
}

func newInsightsResponse(result *segment.Result) insightsResponse {
	resp := insightsResponse{
		RunID:              result.RunID,
		StartedAt:          result.StartedAt,
		Fingerprint:        result.Fingerprint,
		ClassificationHash: result.ClassificationHash,
		Splits:             make([]splitView, 0, len(result.Splits)),
		Insights:           result.Insights,
		Stats:              result.Stats,
	}
	if resp.Insights == nil {
		resp.Insights = []survey.Insight{}
	}
	for _, split := range result.Splits {
		view := splitView{Column: split.Column, LowCount: split.LowCount, HighCount: split.HighCount}
		if !math.IsNaN(split.Median) {
			median := split.Median
			view.Median = &median
		}
		resp.Splits = append(resp.Splits, view)
	}
	return resp
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleUpload(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			respondError(c, s.logger, err)
			return
		}
		respondError(c, s.logger, errors.InvalidInput("multipart field \"file\" is required"))
		return
	}

	file, err := header.Open()
	if err != nil {
		respondError(c, s.logger, errors.Wrap(err, "failed to open upload"))
		return
	}
	defer file.Close()

	record, err := s.service.Upload(c.Request.Context(), header.Filename, file)
	if err != nil {
		respondError(c, s.logger, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"dataset":        record.Summary(),
		"classification": record.Classification,
	})
}

func (s *Server) handleList(c *gin.Context) {
	summaries, err := s.service.List(c.Request.Context())
	if err != nil {
		respondError(c, s.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"datasets": summaries,
		"count":    len(summaries),
	})
}

func (s *Server) handleGet(c *gin.Context) {
	record, err := s.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, s.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"dataset": record.Summary(),
		"headers": record.Data.Headers(),
		"preview": record.Data.Head(5),
	})
}

func (s *Server) handleDelete(c *gin.Context) {
	if err := s.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, s.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleClassification(c *gin.Context) {
	classification, err := s.service.Classification(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, s.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"classification": classification,
		"counts":         classification.Counts(),
	})
}

func (s *Server) handleOverview(c *gin.Context) {
	ov, err := s.service.Overview(c.Request.Context(), c.Param("id"), c.Query("segment"))
	if err != nil {
		respondError(c, s.logger, err)
		return
	}
	c.JSON(http.StatusOK, ov)
}

func (s *Server) handleInsights(c *gin.Context) {
	override, err := decodeClassification(c.Request.Body)
	if err != nil {
		respondError(c, s.logger, err)
		return
	}

	result, err := s.service.Analyze(c.Request.Context(), app.AnalyzeRequest{
		DatasetID:      c.Param("id"),
		Source:         c.Query("source"),
		Classification: override,
	})
	if err != nil {
		respondError(c, s.logger, err)
		return
	}
	c.JSON(http.StatusOK, newInsightsResponse(result))
}

func (s *Server) handleReport(c *gin.Context) {
	format, err := report.ParseFormat(c.Query("format"))
	if err != nil {
		respondError(c, s.logger, err)
		return
	}

	body, err := s.service.Report(c.Request.Context(), c.Param("id"), format)
	if err != nil {
		respondError(c, s.logger, err)
		return
	}
	c.Data(http.StatusOK, format.ContentType(), body)
}

// decodeClassification reads an optional classification override; an empty
// body means none
func decodeClassification(body io.Reader) (survey.Classification, error) {
	if body == nil {
		return nil, nil
	}
	data, err := io.ReadAll(body)
	if err != nil {
		// keep the cause so an oversized body still maps to 413
		return nil, errors.WithCode(errors.CodeInvalidInput, errors.Wrap(err, "failed to read request body"))
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	var classification survey.Classification
	if err := json.Unmarshal(data, &classification); err != nil {
		return nil, errors.ClassificationInvalid("classification override is not a category to columns object: " + err.Error())
	}
	return classification, nil
}

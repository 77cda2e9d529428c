package main

import (
	"encoding/base64"
	"errors"
	"net/http"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/wudi/platekit/observability"
	"github.com/wudi/platekit/plate"
	"github.com/wudi/platekit/preprocess"
)

type ocrRequest struct {
	Image string `json:"image" binding:"required"`
}

// plateInfo mirrors the response shape of the original recognition API so
// existing capture clients keep working unchanged.
type plateInfo struct {
	Region         string `json:"region"`
	Classification string `json:"classification"`
	Hiragana       string `json:"hiragana"`
	Number         string `json:"number"`
	FullText       string `json:"full_text"`
}

type ocrResponse struct {
	Success      bool       `json:"success"`
	DetectedText string     `json:"detected_text"`
	PlateInfo    *plateInfo `json:"plate_info,omitempty"`
	Confidence   float64    `json:"confidence"`
	Engine       string     `json:"ocr_engine,omitempty"`
	Error        string     `json:"error,omitempty"`
	Message      string     `json:"message,omitempty"`
}

func newRouter(pipeline *plate.Pipeline, engineNames []string, logger observability.Logger) *gin.Engine {
	sort.Strings(engineNames)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"engines": engineNames,
		})
	})

	r.POST("/api/ocr", func(c *gin.Context) {
		var req ocrRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, ocrResponse{Error: "no image data provided"})
			return
		}
		image, err := decodeImage(req.Image)
		if err != nil {
			c.JSON(http.StatusBadRequest, ocrResponse{Error: "invalid image data"})
			return
		}

		captureID := uuid.NewString()
		log := logger.With(observability.String("capture", captureID))

		capture, err := pipeline.Process(c.Request.Context(), image)
		switch {
		case errors.Is(err, preprocess.ErrEmptyImage):
			c.JSON(http.StatusBadRequest, ocrResponse{Error: "image is empty, retake the photo"})
			return
		case errors.Is(err, plate.ErrNoPlateDetected):
			log.Info("no plate detected")
			c.JSON(http.StatusOK, ocrResponse{
				DetectedText: "",
				Message:      "no plate detected; adjust lighting, distance or angle, or enter the plate manually",
			})
			return
		case err != nil:
			log.Error("pipeline failure", observability.Error("err", err))
			c.JSON(http.StatusInternalServerError, ocrResponse{Error: err.Error()})
			return
		}

		rec := capture.Record
		log.Info("plate decoded", observability.String("plate", rec.FullText))
		c.JSON(http.StatusOK, ocrResponse{
			Success:      true,
			DetectedText: capture.RawText,
			PlateInfo: &plateInfo{
				Region:         rec.Region,
				Classification: rec.Classification,
				Hiragana:       rec.Kana,
				Number:         rec.Serial,
				FullText:       rec.FullText,
			},
			Confidence: capture.Confidence,
			Engine:     strings.Join(engineNames, ","),
		})
	})

	return r
}

// decodeImage accepts both plain base64 and data-URL payloads.
func decodeImage(s string) ([]byte, error) {
	if strings.HasPrefix(s, "data:image") {
		if i := strings.IndexByte(s, ','); i >= 0 {
			s = s[i+1:]
		}
	}
	return base64.StdEncoding.DecodeString(s)
}

package main

import (
	"bytes"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/golang/glog"

	"github.com/hb9tf/xtiming/export"
	"github.com/hb9tf/xtiming/lightcurve"
	"github.com/hb9tf/xtiming/psd"
	"github.com/hb9tf/xtiming/xspec"
)

const (
	apiPrefix        = "/xtiming/v1"
	whiteNoiseHeader = "X-White-Noise"
	lcFormField      = "lc"
)

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorDetail `json:"error"`
}

func abort(c *gin.Context, status int, code string, err error) {
	c.AbortWithStatusJSON(status, errorResponse{Error: errorDetail{Code: code, Message: err.Error()}})
}

// recovery turns panics into the JSON error shape used by all handlers.
func recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		glog.Warningf("recovered from panic: %v\n", recovered)
		abort(c, http.StatusInternalServerError, "INTERNAL_ERROR", errors.New("an unexpected error occurred"))
	})
}

type XTimingServer struct {
	records chan<- export.Record
}

func (s *XTimingServer) router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), recovery())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	v1 := r.Group(apiPrefix)
	v1.POST("/gti", s.gtiHandler)
	v1.POST("/xspec", s.xspecHandler)
	v1.POST("/collect", s.collectHandler)
	return r
}

// gtiHandler handles POST /xtiming/v1/gti with a multipart light curve upload.
func (s *XTimingServer) gtiHandler(c *gin.Context) {
	fh, err := c.FormFile(lcFormField)
	if err != nil {
		abort(c, http.StatusBadRequest, "INVALID_REQUEST", err)
		return
	}
	dir, err := os.MkdirTemp("", "xtiming-gti-")
	if err != nil {
		abort(c, http.StatusInternalServerError, "INTERNAL_ERROR", err)
		return
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "lc.fits")
	if err := c.SaveUploadedFile(fh, path); err != nil {
		abort(c, http.StatusInternalServerError, "INTERNAL_ERROR", err)
		return
	}
	intervals, err := lightcurve.ExtractGTI(path)
	if err != nil {
		if errors.Is(err, lightcurve.ErrFormat) {
			abort(c, http.StatusBadRequest, "INVALID_LIGHT_CURVE", err)
			return
		}
		abort(c, http.StatusInternalServerError, "INTERNAL_ERROR", err)
		return
	}
	glog.V(1).Infof("extracted %d good time intervals from %q", len(intervals), fh.Filename)
	c.JSON(http.StatusOK, gin.H{
		"gti":      intervals.Pairs(),
		"exposure": intervals.Exposure(),
	})
}

func floatQuery(c *gin.Context, key string) (*float64, error) {
	raw, ok := c.GetQuery(key)
	if !ok || raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// xspecHandler handles POST /xtiming/v1/xspec with a JSON spectrum body and
// answers with the rescaled flux table. The converter is never run here.
func (s *XTimingServer) xspecHandler(c *gin.Context) {
	freq, err := floatQuery(c, "freq")
	if err != nil {
		abort(c, http.StatusBadRequest, "INVALID_REQUEST", err)
		return
	}
	noise, err := floatQuery(c, "noise")
	if err != nil {
		abort(c, http.StatusBadRequest, "INVALID_REQUEST", err)
		return
	}
	spec, err := psd.ReadJSON(c.Request.Body)
	if err != nil {
		abort(c, http.StatusBadRequest, "INVALID_SPECTRUM", err)
		return
	}
	wn, err := xspec.WhiteNoise(spec, freq, noise)
	if err != nil {
		abort(c, http.StatusBadRequest, "NO_NOISE_BINS", err)
		return
	}

	buf := &bytes.Buffer{}
	if err := xspec.WriteTable(buf, xspec.Rescale(spec, wn)); err != nil {
		abort(c, http.StatusInternalServerError, "INTERNAL_ERROR", err)
		return
	}
	c.Header(whiteNoiseHeader, strconv.FormatFloat(wn, 'g', -1, 64))
	c.Data(http.StatusOK, "text/plain; charset=utf-8", buf.Bytes())
}

// collectHandler handles POST /xtiming/v1/collect and hands the records to
// the exporter.
func (s *XTimingServer) collectHandler(c *gin.Context) {
	records := []export.Record{}
	if err := c.ShouldBindJSON(&records); err != nil {
		abort(c, http.StatusBadRequest, "INVALID_REQUEST", err)
		return
	}
	for _, r := range records {
		s.records <- r
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "recordCount": len(records)})
}

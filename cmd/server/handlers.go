package main

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Skufu/healthrec/internal/logging"
	"github.com/Skufu/healthrec/internal/metrics"
	"github.com/Skufu/healthrec/internal/recommend"
)

type handler struct {
	rec Recommender
}

// recommendForm mirrors the HTML form. Pointers let binding tell a missing
// field from a zero.
type recommendForm struct {
	Age        *int     `form:"age" binding:"required,gte=0"`
	Weight     *float64 `form:"weight" binding:"required,gt=0"`
	Height     *float64 `form:"height" binding:"required,gt=0"`
	Conditions string   `form:"conditions"`
}

type recommendRequest struct {
	Age        *int     `json:"age" binding:"required,gte=0"`
	Weight     *float64 `json:"weight" binding:"required,gt=0"`
	Height     *float64 `json:"height" binding:"required,gt=0"`
	Conditions []string `json:"conditions"`
}

type recommendResponse struct {
	BMI             float64  `json:"bmi"`
	Recommendations []string `json:"recommendations"`
}

func (h *handler) index(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", gin.H{})
}

func (h *handler) submitForm(c *gin.Context) {
	var form recommendForm
	if err := c.ShouldBind(&form); err != nil {
		metrics.RecordRecommendation("invalid_input")
		_ = c.Error(err)
		c.HTML(http.StatusBadRequest, "index.html", gin.H{
			"Error": "Please enter a valid age, weight and height.",
		})
		return
	}

	req := recommend.Request{
		Age:        *form.Age,
		BMI:        recommend.BMI(*form.Weight, *form.Height),
		Conditions: recommend.SplitConditions(form.Conditions),
	}
	recs, err := h.recommend(c, req)
	if err != nil {
		c.HTML(http.StatusInternalServerError, "index.html", gin.H{
			"Error": "Recommendations are unavailable right now.",
		})
		return
	}

	c.HTML(http.StatusOK, "recommend.html", gin.H{
		"Recommendations": recs,
	})
}

func (h *handler) recommendJSON(c *gin.Context) {
	var payload recommendRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		metrics.RecordRecommendation("invalid_input")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	req := recommend.Request{
		Age:        *payload.Age,
		BMI:        recommend.BMI(*payload.Weight, *payload.Height),
		Conditions: payload.Conditions,
	}
	recs, err := h.recommend(c, req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "recommendations unavailable"})
		return
	}
	if recs == nil {
		recs = []string{}
	}

	c.JSON(http.StatusOK, recommendResponse{BMI: req.BMI, Recommendations: recs})
}

func (h *handler) recommend(c *gin.Context, req recommend.Request) ([]string, error) {
	log := logging.FromCtx(c.Request.Context())

	recs, err := h.rec.Recommend(req)
	if err != nil {
		metrics.RecordRecommendation("error")
		_ = c.Error(err)
		evt := log.Error().Err(err).Int("age", req.Age)
		if errors.Is(err, recommend.ErrReferenceNotFound) {
			evt = evt.Bool("reference_missing", true)
		}
		evt.Msg("recommendation failed")
		return nil, err
	}

	metrics.RecordRecommendation("ok")
	log.Debug().
		Int("age", req.Age).
		Float64("bmi", req.BMI).
		Int("count", len(recs)).
		Msg("recommendations served")
	return recs, nil
}

package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"demographics-api/pkg/lambda"
)

// DemographicsRequest is the body accepted by the write endpoints
type DemographicsRequest struct {
	ZipCode          interface{}            `json:"zip_code" swaggertype:"string" example:"10001"`
	NumParticipants  interface{}            `json:"num_participants" swaggertype:"integer" example:"20"`
	AdditionalFields map[string]interface{} `json:"additional_fields"`
}

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// DemographicsHandler exposes a dispatcher over HTTP for local development.
// Every dispatched request answers 200 with the dispatcher payload.
type DemographicsHandler struct {
	dispatcher *Dispatcher
}

// NewDemographicsHandler creates a new demographics handler
func NewDemographicsHandler(dispatcher *Dispatcher) *DemographicsHandler {
	return &DemographicsHandler{
		dispatcher: dispatcher,
	}
}

// @Summary Invoke the handler with a raw event
// @Description Dispatch a raw Lambda event document. An empty or null body is dispatched as a missing event.
// @Tags demographics
// @Accept json
// @Produce json
// @Param event body lambda.Event false "Lambda event"
// @Success 200 {object} interface{}
// @Failure 400 {object} ErrorResponse
// @Router /invoke [post]
func (h *DemographicsHandler) Invoke(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid request body",
			Message: err.Error(),
		})
		return
	}

	body = bytes.TrimSpace(body)
	if len(body) == 0 || bytes.Equal(body, []byte("null")) {
		h.respond(c, nil)
		return
	}

	var event lambda.Event
	if err := json.Unmarshal(body, &event); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid request body",
			Message: err.Error(),
		})
		return
	}

	h.respond(c, &event)
}

// @Summary List demographics
// @Description Get every demographics record, or the records of one zip code
// @Tags demographics
// @Produce json
// @Param zipCode query string false "Zip code"
// @Success 200 {array} models.Record
// @Security BearerAuth
// @Router /demographics [get]
func (h *DemographicsHandler) ListDemographics(c *gin.Context) {
	event := &lambda.Event{Method: http.MethodGet}
	if zipCode := c.Query("zipCode"); zipCode != "" {
		event.ZipCode = zipCode
	}
	h.respond(c, event)
}

// @Summary Create or update demographics
// @Description Upsert the record identified by zip_code and num_participants. Returns the previous values of updated attributes.
// @Tags demographics
// @Accept json
// @Produce json
// @Param record body DemographicsRequest true "Record"
// @Success 200 {object} models.Record
// @Failure 400 {object} ErrorResponse
// @Security BearerAuth
// @Router /demographics [post]
func (h *DemographicsHandler) UpdateDemographics(c *gin.Context) {
	h.write(c, http.MethodPost)
}

// @Summary Create demographics
// @Description Create a new record. Fails if the key already exists.
// @Tags demographics
// @Accept json
// @Produce json
// @Param record body DemographicsRequest true "Record"
// @Success 200 {object} models.Record
// @Failure 400 {object} ErrorResponse
// @Security BearerAuth
// @Router /demographics [put]
func (h *DemographicsHandler) CreateDemographics(c *gin.Context) {
	h.write(c, http.MethodPut)
}

// @Summary Delete demographics
// @Description Delete every record of a zip code
// @Tags demographics
// @Produce json
// @Param zip_code path string true "Zip code"
// @Success 200 {object} interface{}
// @Security BearerAuth
// @Router /demographics/{zip_code} [delete]
func (h *DemographicsHandler) DeleteDemographics(c *gin.Context) {
	h.respond(c, &lambda.Event{
		Method:       http.MethodDelete,
		ZipCodeField: c.Param("zip_code"),
	})
}

func (h *DemographicsHandler) write(c *gin.Context, method string) {
	var req DemographicsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid request body",
			Message: err.Error(),
		})
		return
	}

	h.respond(c, &lambda.Event{
		Method:           method,
		ZipCodeField:     req.ZipCode,
		NumParticipants:  req.NumParticipants,
		AdditionalFields: req.AdditionalFields,
	})
}

func (h *DemographicsHandler) respond(c *gin.Context, event *lambda.Event) {
	outcome := h.dispatcher.Dispatch(c.Request.Context(), event)
	if outcome.Failed() {
		_ = c.Error(outcome.Cause)
	}
	c.JSON(http.StatusOK, outcome.Payload)
}

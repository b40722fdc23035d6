package handlers

import (
	"errors"
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"

	requestmodels "github.com/quorumfed/aggregator/internal/api/models"
	"github.com/quorumfed/aggregator/internal/core/logging"
	"github.com/quorumfed/aggregator/internal/core/models"
	"github.com/quorumfed/aggregator/internal/core/ports"
	"github.com/quorumfed/aggregator/internal/utils"
)

type AggregationHandler struct {
	aggregator ports.Aggregator
}

func NewAggregationHandler(aggregator ports.Aggregator) *AggregationHandler {
	return &AggregationHandler{
		aggregator: aggregator,
	}
}

func (h *AggregationHandler) SubmitUpdate(c *gin.Context) {
	log := logging.WithComponent("aggregation_handler")

	var req requestmodels.SubmitUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error().Err(err).Msg("Failed to bind submit update request")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if !common.IsHexAddress(req.Address) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid trainer address"})
		return
	}

	address := common.HexToAddress(req.Address)
	outcome, ratio, err := h.aggregator.SubmitUpdate(c.Request.Context(), address, req.Update)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrUnknownTrainer):
			c.JSON(http.StatusNotFound, gin.H{"error": "Trainer not registered"})
		case errors.Is(err, models.ErrSerialization):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Malformed weight update"})
		default:
			log.Error().Err(err).Str("address", address.Hex()).Msg("Failed to submit update")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to submit update"})
		}
		return
	}

	c.JSON(http.StatusOK, requestmodels.SubmitUpdateResponse{
		Outcome: string(outcome),
		Ratio:   ratio,
	})
}

func (h *AggregationHandler) Commit(c *gin.Context) {
	log := logging.WithComponent("aggregation_handler")

	model, err := h.aggregator.Commit(c.Request.Context())
	if err != nil {
		if errors.Is(err, models.ErrQuorumNotReached) {
			c.JSON(http.StatusConflict, gin.H{"error": "Quorum not reached"})
			return
		}
		log.Error().Err(err).Msg("Failed to commit round")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to commit round"})
		return
	}

	c.JSON(http.StatusOK, requestmodels.CommitResponse{
		Version: model.Version,
		Size:    model.Size,
		Key:     utils.ModelKey(model.Version).Hex(),
	})
}

func (h *AggregationHandler) RoundState(c *gin.Context) {
	log := logging.WithComponent("aggregation_handler")

	state, err := h.aggregator.RoundState(c.Request.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to read round state")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read round state"})
		return
	}

	c.JSON(http.StatusOK, requestmodels.RoundStateResponse{
		Status:        string(state.Status),
		PendingCount:  state.PendingCount,
		TrainerCount:  state.TrainerCount,
		Ratio:         state.Ratio,
		LatestVersion: state.LatestVersion,
	})
}

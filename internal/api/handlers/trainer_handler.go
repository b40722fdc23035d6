package handlers

import (
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"

	requestmodels "github.com/quorumfed/aggregator/internal/api/models"
	"github.com/quorumfed/aggregator/internal/core/logging"
	"github.com/quorumfed/aggregator/internal/core/ports"
)

type TrainerHandler struct {
	aggregator ports.Aggregator
}

func NewTrainerHandler(aggregator ports.Aggregator) *TrainerHandler {
	return &TrainerHandler{
		aggregator: aggregator,
	}
}

func (h *TrainerHandler) RegisterTrainer(c *gin.Context) {
	log := logging.WithComponent("trainer_handler")

	var req requestmodels.RegisterTrainerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error().Err(err).Msg("Failed to bind register trainer request")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if !common.IsHexAddress(req.Address) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid trainer address"})
		return
	}

	address := common.HexToAddress(req.Address)
	if err := h.aggregator.RegisterTrainer(c.Request.Context(), address); err != nil {
		log.Error().Err(err).Str("address", address.Hex()).Msg("Failed to register trainer")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register trainer"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"address": address.Hex()})
}

func (h *TrainerHandler) ListTrainers(c *gin.Context) {
	log := logging.WithComponent("trainer_handler")

	trainers, err := h.aggregator.Trainers(c.Request.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to list trainers")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list trainers"})
		return
	}

	responses := make([]requestmodels.TrainerResponse, 0, len(trainers))
	for _, trainer := range trainers {
		responses = append(responses, requestmodels.TrainerResponse{
			Address: trainer.Address.Hex(),
			Weight:  trainer.Weight,
		})
	}

	c.JSON(http.StatusOK, responses)
}

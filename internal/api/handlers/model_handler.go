package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	requestmodels "github.com/quorumfed/aggregator/internal/api/models"
	"github.com/quorumfed/aggregator/internal/core/logging"
	"github.com/quorumfed/aggregator/internal/core/models"
	"github.com/quorumfed/aggregator/internal/core/ports"
	"github.com/quorumfed/aggregator/internal/utils"
)

type ModelHandler struct {
	aggregator ports.Aggregator
}

func NewModelHandler(aggregator ports.Aggregator) *ModelHandler {
	return &ModelHandler{
		aggregator: aggregator,
	}
}

func (h *ModelHandler) GetLatest(c *gin.Context) {
	log := logging.WithComponent("model_handler")

	model, err := h.aggregator.LatestModel(c.Request.Context())
	if err != nil {
		if errors.Is(err, models.ErrStoreCorruption) {
			log.Error().Err(err).Msg("Latest pointer references a missing model")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Model store corrupted"})
			return
		}
		log.Error().Err(err).Msg("Failed to read latest model")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read latest model"})
		return
	}

	c.JSON(http.StatusOK, modelResponse(model))
}

func (h *ModelHandler) GetByVersion(c *gin.Context) {
	log := logging.WithComponent("model_handler")

	versionStr := c.Param("version")
	version, err := strconv.ParseUint(versionStr, 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid model version"})
		return
	}

	model, found, err := h.aggregator.ModelByVersion(c.Request.Context(), uint32(version))
	if err != nil {
		log.Error().Err(err).Uint64("version", version).Msg("Failed to read model")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read model"})
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "Model version not found"})
		return
	}

	c.JSON(http.StatusOK, modelResponse(model))
}

func modelResponse(m *models.Model) requestmodels.ModelResponse {
	return requestmodels.ModelResponse{
		Version: m.Version,
		Size:    m.Size,
		Weights: m.Weights,
		Key:     utils.ModelKey(m.Version).Hex(),
	}
}

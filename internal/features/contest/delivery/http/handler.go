package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"contest-engine-backend/internal/common/errors"
	"contest-engine-backend/internal/features/contest/models"
	"contest-engine-backend/internal/features/contest/service"
)

type ContestHandler struct {
	contests  *service.ContestService
	sync      *service.SyncService
	collector *service.CollectorService
	finalizer *service.FinalizeService
	retrier   *service.RetryService
}

func NewContestHandler(
	contests *service.ContestService,
	sync *service.SyncService,
	collector *service.CollectorService,
	finalizer *service.FinalizeService,
	retrier *service.RetryService,
) *ContestHandler {
	return &ContestHandler{
		contests:  contests,
		sync:      sync,
		collector: collector,
		finalizer: finalizer,
		retrier:   retrier,
	}
}

func (h *ContestHandler) RegisterRoutes(router *gin.RouterGroup) {
	contests := router.Group("/contests")
	{
		contests.POST("", h.createContest)
		contests.GET("", h.listContests)
		contests.GET("/:id", h.getContest)
		contests.PATCH("/:id", h.updateContest)
		contests.DELETE("/:id", h.deleteContest)

		contests.GET("/:id/cycles", h.listCycles)
		contests.POST("/:id/sync", h.syncContest)
		contests.POST("/:id/collect", h.collectParticipants)
		contests.POST("/:id/process-participants", h.processNewParticipants)
		contests.POST("/:id/finalize", h.processResults)

		contests.GET("/:id/entries", h.getEntries)
		contests.DELETE("/:id/entries", h.clearEntries)

		contests.POST("/:id/promo-codes", h.addPromoCode)
		contests.POST("/:id/promo-codes/import", h.importPromoCodes)
		contests.GET("/:id/promo-codes", h.listPromoCodes)

		contests.GET("/:id/delivery-logs", h.getDeliveryLog)
		contests.DELETE("/:id/delivery-logs", h.clearDeliveryLog)
		contests.POST("/:id/delivery-logs/retry", h.retryAllDeliveries)
	}

	cycles := router.Group("/cycles")
	{
		cycles.POST("/:id/archive", h.archiveCycle)
	}

	promoCodes := router.Group("/promo-codes")
	{
		promoCodes.PATCH("/:id", h.updatePromoCode)
		promoCodes.DELETE("/:id", h.deletePromoCode)
	}

	projects := router.Group("/projects")
	{
		projects.GET("/:project_id/blacklist", h.listBlacklist)
		projects.POST("/:project_id/blacklist", h.addToBlacklist)
	}
	router.DELETE("/blacklist/:id", h.removeFromBlacklist)

	deliveryLogs := router.Group("/delivery-logs")
	{
		deliveryLogs.POST("/:id/retry", h.retryDelivery)
	}

	callbacks := router.Group("/callbacks")
	{
		callbacks.POST("/post-published", h.onPostPublished)
		callbacks.POST("/end-trigger-fired", h.onEndTriggerFired)
	}
}

// @Summary Create contest
// @Description Creates a contest configuration and returns it
// @Tags contests
// @Accept json
// @Produce json
// @Param input body models.ContestCreate true "Contest configuration"
// @Success 201 {object} models.Contest
// @Failure 400 {object} middleware.ErrorResponse "Validation error"
// @Router /contests [post]
func (h *ContestHandler) createContest(c *gin.Context) {
	var input models.ContestCreate
	if err := c.ShouldBindJSON(&input); err != nil {
		c.Error(errors.Wrap(err, errors.ErrCodeBadRequest, "Invalid request body"))
		return
	}

	contest, err := h.contests.Create(c.Request.Context(), &input)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, contest)
}

// @Summary List contests
// @Tags contests
// @Produce json
// @Param project_id query string false "Filter by project"
// @Success 200 {array} models.Contest
// @Router /contests [get]
func (h *ContestHandler) listContests(c *gin.Context) {
	contests, err := h.contests.List(c.Request.Context(), c.Query("project_id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, contests)
}

// @Summary Get contest
// @Tags contests
// @Produce json
// @Param id path string true "Contest ID"
// @Success 200 {object} models.Contest
// @Failure 404 {object} middleware.ErrorResponse "Contest not found"
// @Router /contests/{id} [get]
func (h *ContestHandler) getContest(c *gin.Context) {
	contest, err := h.contests.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, contest)
}

// @Summary Update contest
// @Description Applies a partial update to the contest configuration
// @Tags contests
// @Accept json
// @Produce json
// @Param id path string true "Contest ID"
// @Param input body models.ContestUpdate true "Fields to update"
// @Success 200 {object} models.Contest
// @Failure 400 {object} middleware.ErrorResponse "Validation error"
// @Failure 404 {object} middleware.ErrorResponse "Contest not found"
// @Router /contests/{id} [patch]
func (h *ContestHandler) updateContest(c *gin.Context) {
	var input models.ContestUpdate
	if err := c.ShouldBindJSON(&input); err != nil {
		c.Error(errors.Wrap(err, errors.ErrCodeBadRequest, "Invalid request body"))
		return
	}

	contest, err := h.contests.Update(c.Request.Context(), c.Param("id"), &input)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, contest)
}

// @Summary Delete contest
// @Description Deletes the contest and all dependent cycles, entries and logs
// @Tags contests
// @Param id path string true "Contest ID"
// @Success 204
// @Failure 404 {object} middleware.ErrorResponse "Contest not found"
// @Router /contests/{id} [delete]
func (h *ContestHandler) deleteContest(c *gin.Context) {
	if err := h.contests.Delete(c.Request.Context(), c.Param("id")); err != nil {
		c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}

// @Summary List contest cycles
// @Tags cycles
// @Produce json
// @Param id path string true "Contest ID"
// @Success 200 {array} models.Cycle
// @Router /contests/{id}/cycles [get]
func (h *ContestHandler) listCycles(c *gin.Context) {
	cycles, err := h.contests.ListCycles(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, cycles)
}

// @Summary Synchronize contest posts
// @Description Reconciles scheduled trigger posts with the current configuration
// @Tags cycles
// @Param id path string true "Contest ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} middleware.ErrorResponse "Contest not found"
// @Failure 409 {object} middleware.ErrorResponse "A sync or finalize run is already in progress"
// @Router /contests/{id}/sync [post]
func (h *ContestHandler) syncContest(c *gin.Context) {
	if err := h.sync.SyncContestPosts(c.Request.Context(), c.Param("id")); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// @Summary Collect participants
// @Description Fetches reactions from the platform and rebuilds the entry list
// @Tags cycles
// @Produce json
// @Param id path string true "Contest ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} middleware.ErrorResponse "Contest or cycle not found"
// @Router /contests/{id}/collect [post]
func (h *ContestHandler) collectParticipants(c *gin.Context) {
	count, err := h.collector.CollectParticipants(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"participants_count": count})
}

// @Summary Process new participants
// @Description Re-collects the entry list and reports how many participants are new since the previous run
// @Tags cycles
// @Produce json
// @Param id path string true "Contest ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} middleware.ErrorResponse "Contest or cycle not found"
// @Router /contests/{id}/process-participants [post]
func (h *ContestHandler) processNewParticipants(c *gin.Context) {
	total, added, err := h.collector.ProcessNewParticipants(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"participants_count": total, "new_participants": added})
}

// @Summary Finalize active cycle
// @Description Picks winners, issues prizes, announces results and restarts cyclic contests
// @Tags cycles
// @Param id path string true "Contest ID"
// @Success 200 {object} map[string]interface{}
// @Failure 409 {object} middleware.ErrorResponse "Cycle is not in a finalizable state"
// @Failure 422 {object} middleware.ErrorResponse "Not enough unissued promo codes"
// @Router /contests/{id}/finalize [post]
func (h *ContestHandler) processResults(c *gin.Context) {
	if err := h.finalizer.ProcessResults(c.Request.Context(), c.Param("id")); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// @Summary Archive cycle
// @Description Moves a finished cycle into the archived terminal state
// @Tags cycles
// @Produce json
// @Param id path string true "Cycle ID"
// @Success 200 {object} models.Cycle
// @Failure 404 {object} middleware.ErrorResponse "Cycle not found"
// @Failure 409 {object} middleware.ErrorResponse "Cycle is not finished"
// @Router /cycles/{id}/archive [post]
func (h *ContestHandler) archiveCycle(c *gin.Context) {
	cycle, err := h.contests.ArchiveCycle(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, cycle)
}

// @Summary Get participants of the open cycle
// @Tags entries
// @Produce json
// @Param id path string true "Contest ID"
// @Success 200 {array} models.Entry
// @Router /contests/{id}/entries [get]
func (h *ContestHandler) getEntries(c *gin.Context) {
	entries, err := h.contests.GetEntries(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, entries)
}

// @Summary Clear participants of the open cycle
// @Tags entries
// @Param id path string true "Contest ID"
// @Success 204
// @Router /contests/{id}/entries [delete]
func (h *ContestHandler) clearEntries(c *gin.Context) {
	if err := h.contests.ClearEntries(c.Request.Context(), c.Param("id")); err != nil {
		c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}

// @Summary Add promo code
// @Tags promo-codes
// @Accept json
// @Produce json
// @Param id path string true "Contest ID"
// @Param input body models.PromoCodeCreate true "Promo code"
// @Success 201 {object} models.PromoCode
// @Router /contests/{id}/promo-codes [post]
func (h *ContestHandler) addPromoCode(c *gin.Context) {
	var input models.PromoCodeCreate
	if err := c.ShouldBindJSON(&input); err != nil {
		c.Error(errors.Wrap(err, errors.ErrCodeBadRequest, "Invalid request body"))
		return
	}

	code, err := h.contests.AddPromoCode(c.Request.Context(), c.Param("id"), &input)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, code)
}

// @Summary Import promo codes
// @Description Adds a batch of codes sharing one prize description
// @Tags promo-codes
// @Accept json
// @Produce json
// @Param id path string true "Contest ID"
// @Param input body models.PromoCodeBulkImport true "Codes to import"
// @Success 201 {object} map[string]interface{}
// @Router /contests/{id}/promo-codes/import [post]
func (h *ContestHandler) importPromoCodes(c *gin.Context) {
	var input models.PromoCodeBulkImport
	if err := c.ShouldBindJSON(&input); err != nil {
		c.Error(errors.Wrap(err, errors.ErrCodeBadRequest, "Invalid request body"))
		return
	}

	imported, err := h.contests.ImportPromoCodes(c.Request.Context(), c.Param("id"), &input)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"imported": imported})
}

// @Summary List promo codes
// @Tags promo-codes
// @Produce json
// @Param id path string true "Contest ID"
// @Success 200 {array} models.PromoCode
// @Router /contests/{id}/promo-codes [get]
func (h *ContestHandler) listPromoCodes(c *gin.Context) {
	codes, err := h.contests.ListPromoCodes(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, codes)
}

// @Summary Update promo code
// @Description Edits the prize description; issuance state is immutable
// @Tags promo-codes
// @Accept json
// @Produce json
// @Param id path string true "Promo code ID"
// @Param input body models.PromoCodeUpdate true "Fields to update"
// @Success 200 {object} models.PromoCode
// @Router /promo-codes/{id} [patch]
func (h *ContestHandler) updatePromoCode(c *gin.Context) {
	var input models.PromoCodeUpdate
	if err := c.ShouldBindJSON(&input); err != nil {
		c.Error(errors.Wrap(err, errors.ErrCodeBadRequest, "Invalid request body"))
		return
	}

	code, err := h.contests.UpdatePromoCode(c.Request.Context(), c.Param("id"), &input)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, code)
}

// @Summary Delete promo code
// @Description Removes an unissued promo code; issued codes are rejected
// @Tags promo-codes
// @Param id path string true "Promo code ID"
// @Success 204
// @Failure 409 {object} middleware.ErrorResponse "Code already issued"
// @Router /promo-codes/{id} [delete]
func (h *ContestHandler) deletePromoCode(c *gin.Context) {
	if err := h.contests.DeletePromoCode(c.Request.Context(), c.Param("id")); err != nil {
		c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}

// @Summary List blacklist
// @Description Returns active bans for a project, purging expired ones
// @Tags blacklist
// @Produce json
// @Param project_id path string true "Project ID"
// @Success 200 {array} models.BlacklistEntry
// @Router /projects/{project_id}/blacklist [get]
func (h *ContestHandler) listBlacklist(c *gin.Context) {
	entries, err := h.contests.ListBlacklist(c.Request.Context(), c.Param("project_id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, entries)
}

// @Summary Ban user
// @Tags blacklist
// @Accept json
// @Produce json
// @Param project_id path string true "Project ID"
// @Param input body models.BlacklistCreate true "User to ban"
// @Success 201 {object} models.BlacklistEntry
// @Router /projects/{project_id}/blacklist [post]
func (h *ContestHandler) addToBlacklist(c *gin.Context) {
	var input models.BlacklistCreate
	if err := c.ShouldBindJSON(&input); err != nil {
		c.Error(errors.Wrap(err, errors.ErrCodeBadRequest, "Invalid request body"))
		return
	}

	entry, err := h.contests.AddToBlacklist(c.Request.Context(), c.Param("project_id"), &input)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, entry)
}

// @Summary Remove ban
// @Tags blacklist
// @Param id path string true "Blacklist entry ID"
// @Success 204
// @Router /blacklist/{id} [delete]
func (h *ContestHandler) removeFromBlacklist(c *gin.Context) {
	if err := h.contests.RemoveFromBlacklist(c.Request.Context(), c.Param("id")); err != nil {
		c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}

// @Summary Get delivery log
// @Tags delivery
// @Produce json
// @Param id path string true "Contest ID"
// @Success 200 {array} models.DeliveryLog
// @Router /contests/{id}/delivery-logs [get]
func (h *ContestHandler) getDeliveryLog(c *gin.Context) {
	entries, err := h.contests.GetDeliveryLog(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, entries)
}

// @Summary Clear delivery log
// @Tags delivery
// @Param id path string true "Contest ID"
// @Success 204
// @Router /contests/{id}/delivery-logs [delete]
func (h *ContestHandler) clearDeliveryLog(c *gin.Context) {
	if err := h.contests.ClearDeliveryLog(c.Request.Context(), c.Param("id")); err != nil {
		c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}

// @Summary Retry one delivery
// @Description Re-sends the stored message of a single failed delivery
// @Tags delivery
// @Produce json
// @Param id path string true "Delivery log ID"
// @Success 200 {object} models.DeliveryLog
// @Router /delivery-logs/{id}/retry [post]
func (h *ContestHandler) retryDelivery(c *gin.Context) {
	entry, err := h.retrier.Retry(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, entry)
}

// @Summary Retry all failed deliveries
// @Description Re-attempts every failed delivery of the contest independently
// @Tags delivery
// @Produce json
// @Param id path string true "Contest ID"
// @Success 200 {object} map[string]interface{}
// @Router /contests/{id}/delivery-logs/retry [post]
func (h *ContestHandler) retryAllDeliveries(c *gin.Context) {
	sent, err := h.retrier.RetryAll(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"sent": sent})
}

type postPublishedCallback struct {
	CycleID        string `json:"cycle_id" binding:"required"`
	PlatformPostID int64  `json:"platform_post_id" binding:"required"`
}

// @Summary Start post published callback
// @Description Invoked by the scheduling tracker when a start trigger post goes live
// @Tags callbacks
// @Accept json
// @Param input body postPublishedCallback true "Published post reference"
// @Success 200 {object} map[string]interface{}
// @Router /callbacks/post-published [post]
func (h *ContestHandler) onPostPublished(c *gin.Context) {
	var input postPublishedCallback
	if err := c.ShouldBindJSON(&input); err != nil {
		c.Error(errors.Wrap(err, errors.ErrCodeBadRequest, "Invalid request body"))
		return
	}

	if err := h.sync.OnStartPostPublished(c.Request.Context(), input.CycleID, input.PlatformPostID); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

type endTriggerCallback struct {
	ContestID string `json:"contest_id" binding:"required"`
}

// @Summary End trigger fired callback
// @Description Invoked by the scheduling tracker when a cycle's end time arrives
// @Tags callbacks
// @Accept json
// @Param input body endTriggerCallback true "Contest whose cycle ended"
// @Success 200 {object} map[string]interface{}
// @Router /callbacks/end-trigger-fired [post]
func (h *ContestHandler) onEndTriggerFired(c *gin.Context) {
	var input endTriggerCallback
	if err := c.ShouldBindJSON(&input); err != nil {
		c.Error(errors.Wrap(err, errors.ErrCodeBadRequest, "Invalid request body"))
		return
	}

	if err := h.finalizer.ProcessResults(c.Request.Context(), input.ContestID); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

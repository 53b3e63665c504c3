package controller

import (
	"studycoach_backend/internal/service"
	"studycoach_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// ReviewController 评审与审计轨迹
type ReviewController struct {
	ReviewService *service.ReviewService
}

func NewReviewController(reviewService *service.ReviewService) *ReviewController {
	return &ReviewController{ReviewService: reviewService}
}

// Review godoc
// @Summary 评审计划项
// @Description 对已提交的项落结论（approved/partial/rejected），成功后该项锁定
// @Tags 评审
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "计划项ID"
// @Param   body body service.ReviewRequest true "评审结论"
// @Success 200 {object} util.Response "成功"
// @Failure 400 {object} util.Response "结论不合法或未提交"
// @Failure 409 {object} util.Response "已被评审锁定"
// @Router /api/teacher/items/{id}/review [post]
func (c *ReviewController) Review(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	var req service.ReviewRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.ReviewService.Review(claims, util.MustParseUint(ctx.Param("id")), &req); err != nil {
		util.BusinessError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// BulkReview godoc
// @Summary 批量评审
// @Description 逐项独立落锤，单项失败不影响其余，返回每项结果
// @Tags 评审
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   body body service.BulkReviewRequest true "项ID列表与结论"
// @Success 200 {object} util.Response{data=[]service.BulkReviewResult} "成功"
// @Router /api/teacher/items/bulk-review [post]
func (c *ReviewController) BulkReview(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	var req service.BulkReviewRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	results, err := c.ReviewService.BulkReview(claims, &req)
	if err != nil {
		util.BusinessError(ctx, err)
		return
	}
	util.Success(ctx, results)
}

// Override godoc
// @Summary 管理员改判
// @Description 绕过锁定重写评审结论，审计日志照常追加
// @Tags 评审
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "计划项ID"
// @Param   body body service.ReviewRequest true "新结论"
// @Success 200 {object} util.Response "成功"
// @Failure 403 {object} util.Response "仅管理员"
// @Router /api/admin/items/{id}/review [put]
func (c *ReviewController) Override(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	var req service.ReviewRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.ReviewService.Override(claims, util.MustParseUint(ctx.Param("id")), &req); err != nil {
		util.BusinessError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// History godoc
// @Summary 评审轨迹
// @Description 某项的完整审计记录，按时间正序
// @Tags 评审
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "计划项ID"
// @Success 200 {object} util.Response{data=[]model.ReviewLog} "成功"
// @Router /api/items/{id}/review-history [get]
func (c *ReviewController) History(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	logs, err := c.ReviewService.History(claims, util.MustParseUint(ctx.Param("id")))
	if err != nil {
		util.BusinessError(ctx, err)
		return
	}
	util.Success(ctx, logs)
}

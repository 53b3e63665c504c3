package controller

import (
	"os"
	"path/filepath"

	"studycoach_backend/internal/service"
	"studycoach_backend/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PlanItemController 学生侧的计划项操作：计时、提交、重置、证据
type PlanItemController struct {
	ItemService     *service.PlanItemService
	EvidenceService *service.EvidenceService
}

func NewPlanItemController(itemService *service.PlanItemService, evidenceService *service.EvidenceService) *PlanItemController {
	return &PlanItemController{
		ItemService:     itemService,
		EvidenceService: evidenceService,
	}
}

type StartTimerRequest struct {
	DeviceInfo string `json:"deviceInfo"`
}

// StartTimer godoc
// @Summary 开始计时
// @Description 为计划项开一段计时；首次计时把项推进到 in_progress
// @Tags 计划项
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "计划项ID"
// @Param   body body StartTimerRequest false "设备信息"
// @Success 201 {object} util.Response{data=model.TimerSession} "已开始"
// @Failure 404 {object} util.Response "计划项不存在"
// @Failure 409 {object} util.Response "已被评审锁定"
// @Router /api/items/{id}/timer/start [post]
func (c *PlanItemController) StartTimer(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	var req StartTimerRequest
	_ = ctx.ShouldBindJSON(&req)

	session, err := c.ItemService.StartTimer(claims, util.MustParseUint(ctx.Param("id")), req.DeviceInfo)
	if err != nil {
		util.BusinessError(ctx, err)
		return
	}
	util.Created(ctx, session)
}

type StopTimerRequest struct {
	SessionID uint `json:"sessionId" binding:"required"`
	// 客户端侧时长（秒），仅用于推算结束时刻
	DurationSeconds int `json:"durationSeconds"`
}

// StopTimer godoc
// @Summary 结束计时
// @Description 关闭计时段并累计时长；重复关闭返回 already_stopped，累计值不变
// @Tags 计划项
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "计划项ID"
// @Param   body body StopTimerRequest true "计时段ID"
// @Success 200 {object} util.Response{data=service.StopTimerResult} "成功"
// @Failure 404 {object} util.Response "计时段不存在"
// @Failure 409 {object} util.Response "计时段已关闭"
// @Router /api/items/{id}/timer/stop [post]
func (c *PlanItemController) StopTimer(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	var req StopTimerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.ItemService.StopTimer(claims, util.MustParseUint(ctx.Param("id")), req.SessionID, req.DurationSeconds)
	if err != nil {
		util.BusinessError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// ListSessions godoc
// @Summary 计划项的计时段列表
// @Tags 计划项
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "计划项ID"
// @Success 200 {object} util.Response{data=[]model.TimerSession} "成功"
// @Router /api/items/{id}/sessions [get]
func (c *PlanItemController) ListSessions(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	sessions, err := c.ItemService.ListSessions(claims, util.MustParseUint(ctx.Param("id")))
	if err != nil {
		util.BusinessError(ctx, err)
		return
	}
	util.Success(ctx, sessions)
}

// Submit godoc
// @Summary 提交完成
// @Description 证据政策在此把关；manualMinutes 只会抬高累计时长
// @Tags 计划项
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "计划项ID"
// @Param   body body service.SubmitRequest false "留言与手动补报分钟"
// @Success 200 {object} util.Response "成功"
// @Failure 400 {object} util.Response "证据政策不满足"
// @Failure 409 {object} util.Response "已被评审锁定"
// @Router /api/items/{id}/submit [post]
func (c *PlanItemController) Submit(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	var req service.SubmitRequest
	_ = ctx.ShouldBindJSON(&req)

	if err := c.ItemService.Submit(claims, util.MustParseUint(ctx.Param("id")), &req); err != nil {
		util.BusinessError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// SelfReset godoc
// @Summary 学生自助重置
// @Description 撤回提交回到 pending 重做；每项最多两次，评审落锤后不可用
// @Tags 计划项
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "计划项ID"
// @Success 200 {object} util.Response "成功"
// @Failure 400 {object} util.Response "重置次数用完"
// @Failure 409 {object} util.Response "已被评审"
// @Router /api/items/{id}/reset [post]
func (c *PlanItemController) SelfReset(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if err := c.ItemService.SelfReset(claims, util.MustParseUint(ctx.Param("id"))); err != nil {
		util.BusinessError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// ResetTime godoc
// @Summary 清空计时
// @Description 教练工具：作废全部计时段并把累计时长归零
// @Tags 计划项
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "计划项ID"
// @Success 200 {object} util.Response "成功"
// @Router /api/teacher/items/{id}/time/reset [post]
func (c *PlanItemController) ResetTime(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if err := c.ItemService.ResetTime(claims, util.MustParseUint(ctx.Param("id"))); err != nil {
		util.BusinessError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// VoidSession godoc
// @Summary 作废计时段
// @Description 教练工具：作废一段已关闭的计时并扣回时长
// @Tags 计划项
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "计划项ID"
// @Param   sessionId path int true "计时段ID"
// @Success 200 {object} util.Response "成功"
// @Router /api/teacher/items/{id}/sessions/{sessionId}/void [post]
func (c *PlanItemController) VoidSession(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	err := c.ItemService.VoidSession(claims,
		util.MustParseUint(ctx.Param("id")),
		util.MustParseUint(ctx.Param("sessionId")))
	if err != nil {
		util.BusinessError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

type TextEvidenceRequest struct {
	Text string `json:"text" binding:"required"`
	Note string `json:"note"`
}

// AddTextEvidence godoc
// @Summary 提交文字证据
// @Tags 证据
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "计划项ID"
// @Param   body body TextEvidenceRequest true "文字内容"
// @Success 201 {object} util.Response{data=model.Evidence} "成功"
// @Failure 409 {object} util.Response "已被评审锁定"
// @Router /api/items/{id}/evidence/text [post]
func (c *PlanItemController) AddTextEvidence(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	var req TextEvidenceRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	evidence, err := c.EvidenceService.AddText(claims, util.MustParseUint(ctx.Param("id")), req.Text, req.Note)
	if err != nil {
		util.BusinessError(ctx, err)
		return
	}
	util.Created(ctx, evidence)
}

// UploadEvidence godoc
// @Summary 上传文件证据
// @Description 图片/音频/文档；音频会探测时长
// @Tags 证据
// @Accept  multipart/form-data
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "计划项ID"
// @Param   file formData file true "证据文件"
// @Param   note formData string false "备注"
// @Success 201 {object} util.Response{data=model.Evidence} "成功"
// @Failure 400 {object} util.Response "文件类型或大小不合法"
// @Failure 503 {object} util.Response "存储不可用"
// @Router /api/items/{id}/evidence/file [post]
func (c *PlanItemController) UploadEvidence(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)

	file, err := ctx.FormFile("file")
	if err != nil {
		util.BadRequest(ctx, "missing file")
		return
	}

	tmpPath := filepath.Join(os.TempDir(), uuid.New().String()+"_"+util.SanitizeFilename(file.Filename))
	if err := ctx.SaveUploadedFile(file, tmpPath); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	defer os.Remove(tmpPath)

	evidence, err := c.EvidenceService.AddFile(ctx.Request.Context(), claims,
		util.MustParseUint(ctx.Param("id")),
		file.Filename, tmpPath, file.Size,
		ctx.PostForm("note"))
	if err != nil {
		util.BusinessError(ctx, err)
		return
	}
	util.Created(ctx, evidence)
}

// ListEvidence godoc
// @Summary 计划项的证据列表
// @Tags 证据
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "计划项ID"
// @Success 200 {object} util.Response{data=object} "成功"
// @Router /api/items/{id}/evidence [get]
func (c *PlanItemController) ListEvidence(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	evidences, urls, err := c.EvidenceService.List(claims, util.MustParseUint(ctx.Param("id")))
	if err != nil {
		util.BusinessError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{
		"evidence": evidences,
		"urls":     urls,
	})
}

// DeleteEvidence godoc
// @Summary 删除证据
// @Description 上传者或教练可删；评审落锤后不可删
// @Tags 证据
// @Produce  json
// @Security BearerAuth
// @Param   evidenceId path int true "证据ID"
// @Success 200 {object} util.Response "成功"
// @Failure 409 {object} util.Response "已被评审锁定"
// @Router /api/evidence/{evidenceId} [delete]
func (c *PlanItemController) DeleteEvidence(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if err := c.EvidenceService.Delete(claims, util.MustParseUint(ctx.Param("evidenceId"))); err != nil {
		util.BusinessError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

package controller

import (
	"time"

	"studycoach_backend/internal/service"
	"studycoach_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// ReportController 进度报告：老师/学生端与家长只读端
type ReportController struct {
	ReportService *service.ReportService
	ScoreService  *service.ScoreService
}

func NewReportController(reportService *service.ReportService, scoreService *service.ScoreService) *ReportController {
	return &ReportController{
		ReportService: reportService,
		ScoreService:  scoreService,
	}
}

func parseRange(ctx *gin.Context) (time.Time, time.Time, bool) {
	from, err := time.Parse(util.DateFormat, ctx.Query("from"))
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	to, err := time.Parse(util.DateFormat, ctx.Query("to"))
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	return from, to, true
}

// GetReport godoc
// @Summary 学生进度报告
// @Description 一段日期内计划、计时、评审的聚合视图
// @Tags 报告
// @Produce  json
// @Security BearerAuth
// @Param   studentId path int true "学生ID"
// @Param   from query string true "起始日期 YYYY-MM-DD"
// @Param   to query string true "结束日期 YYYY-MM-DD"
// @Success 200 {object} util.Response{data=service.ProgressReport} "成功"
// @Router /api/students/{studentId}/report [get]
func (c *ReportController) GetReport(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	from, to, ok := parseRange(ctx)
	if !ok {
		util.BadRequest(ctx, "invalid date range")
		return
	}

	report, err := c.ReportService.GetReport(claims, util.MustParseUint(ctx.Param("studentId")), from, to)
	if err != nil {
		util.BusinessError(ctx, err)
		return
	}
	util.Success(ctx, report)
}

// GetGuardianReport godoc
// @Summary 家长端只读报告
// @Description 凭访问令牌免登录查看；不带日期默认最近七天
// @Tags 报告
// @Produce  json
// @Param   token path string true "家长访问令牌"
// @Param   from query string false "起始日期 YYYY-MM-DD"
// @Param   to query string false "结束日期 YYYY-MM-DD"
// @Success 200 {object} util.Response{data=service.ProgressReport} "成功"
// @Failure 404 {object} util.Response "令牌无效"
// @Router /api/guardian/{token}/report [get]
func (c *ReportController) GetGuardianReport(ctx *gin.Context) {
	var from, to time.Time
	if ctx.Query("from") != "" || ctx.Query("to") != "" {
		parsedFrom, parsedTo, ok := parseRange(ctx)
		if !ok {
			util.BadRequest(ctx, "invalid date range")
			return
		}
		from, to = parsedFrom, parsedTo
	}

	report, err := c.ReportService.GetGuardianReport(ctx.Param("token"), from, to)
	if err != nil {
		util.BusinessError(ctx, err)
		return
	}
	util.Success(ctx, report)
}

// CreateScore godoc
// @Summary 录入测评成绩
// @Tags 报告
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   body body service.CreateScoreRequest true "成绩信息"
// @Success 201 {object} util.Response{data=model.ScoreRecord} "成功"
// @Router /api/teacher/scores [post]
func (c *ReportController) CreateScore(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	var req service.CreateScoreRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	record, err := c.ScoreService.Create(claims, &req)
	if err != nil {
		util.BusinessError(ctx, err)
		return
	}
	util.Created(ctx, record)
}

// ListScores godoc
// @Summary 学生成绩列表
// @Tags 报告
// @Produce  json
// @Security BearerAuth
// @Param   studentId path int true "学生ID"
// @Param   limit query int false "数量上限，默认20"
// @Success 200 {object} util.Response{data=[]model.ScoreRecord} "成功"
// @Router /api/students/{studentId}/scores [get]
func (c *ReportController) ListScores(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	limit := int(util.MustParseUint(ctx.Query("limit")))

	records, err := c.ScoreService.ListByStudent(claims, util.MustParseUint(ctx.Param("studentId")), limit)
	if err != nil {
		util.BusinessError(ctx, err)
		return
	}
	util.Success(ctx, records)
}

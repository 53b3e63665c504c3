package model

// StudentProfile 学生档案；可关联登录账号，也可先建档后开户
// swagger:model StudentProfile
type StudentProfile struct {
	BaseModel
	UserID            *uint  `gorm:"uniqueIndex" json:"userId,omitempty"`
	FullName          string `gorm:"size:64;not null;index" json:"fullName"`
	Nickname          string `gorm:"size:64" json:"nickname,omitempty"`
	GradeLevel        string `gorm:"size:32" json:"gradeLevel,omitempty"`
	ExamTarget        string `gorm:"size:32" json:"examTarget,omitempty"` // 基础 / 雅思 / 托福 / 其他
	GuardianName      string `gorm:"size:64" json:"guardianName,omitempty"`
	GuardianContact   string `gorm:"size:64" json:"guardianContact,omitempty"`
	// 未开通家长访问时为 NULL，唯一索引只约束已发放的令牌
	GuardianViewToken *string `gorm:"size:64;uniqueIndex" json:"-"`
	Notes             string `gorm:"type:text" json:"notes,omitempty"`
	PrimaryTeacherID  *uint  `gorm:"index" json:"primaryTeacherId,omitempty"`
}

func (StudentProfile) TableName() string {
	return "student_profiles"
}

type LinkRole string

const (
	LinkCoach    LinkRole = "coach"
	LinkReviewer LinkRole = "reviewer"
)

// TeacherStudentLink 老师与学生的授权关系，驱动所有操作的访问检查
type TeacherStudentLink struct {
	BaseModel
	TeacherID uint     `gorm:"index;uniqueIndex:uq_teacher_student" json:"teacherId"`
	StudentID uint     `gorm:"index;uniqueIndex:uq_teacher_student" json:"studentId"`
	Role      LinkRole `gorm:"size:32;default:'coach'" json:"role"`
	IsPrimary bool     `gorm:"default:false" json:"isPrimary"`
	CreatedBy uint     `json:"createdBy"`
}

func (TeacherStudentLink) TableName() string {
	return "teacher_student_links"
}

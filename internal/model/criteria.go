package model

import (
	"encoding/json"
	"errors"
)

var ErrEmptyCriteria = errors.New("empty criteria")

// EventType 触发成就检查的领域事件类型
type EventType string

const (
	EventModuleCompleted     EventType = "module_completed"
	EventAssessmentSubmitted EventType = "assessment_submitted"
	EventForumPost           EventType = "forum_post"
	EventStreak              EventType = "streak"
	EventTrackCompleted      EventType = "track_completed"
)

// Criteria 成就解锁条件。封闭的标签联合：恰好一个变体字段非空才有意义，
// 空的或无法识别的条件永远不满足，解析失败不报错只记警告。
type Criteria struct {
	ModuleCompletion *ModuleCompletionCriteria `json:"module_completion,omitempty"`
	PerfectScore     *PerfectScoreCriteria     `json:"perfect_score,omitempty"`
	ScoreThreshold   *ScoreThresholdCriteria   `json:"score_threshold,omitempty"`
	ForumHelp        *ForumHelpCriteria        `json:"forum_help,omitempty"`
	TrackCompletion  *TrackCompletionCriteria  `json:"track_completion,omitempty"`
	Streak           *StreakCriteria           `json:"streak,omitempty"`
}

// ModuleCompletionCriteria 完成指定模块；module_id 为空表示任意模块
type ModuleCompletionCriteria struct {
	ModuleID  *uint `json:"module_id,omitempty"`
	AnyModule bool  `json:"any_module,omitempty"`
}

// PerfectScoreCriteria 在指定模块（或任意测验）拿到 100%
type PerfectScoreCriteria struct {
	ModuleID      *uint `json:"module_id,omitempty"`
	AnyAssessment bool  `json:"any_assessment,omitempty"`
}

// ScoreThresholdCriteria 历史最高测验得分达到阈值
type ScoreThresholdCriteria struct {
	MinScore float64 `json:"min_score"`
}

// ForumHelpCriteria 有帮助的帖子数量（已解决或被点赞）达到目标
type ForumHelpCriteria struct {
	Posts int `json:"posts"`
}

// TrackCompletionCriteria 完成指定方向的全部模块；all_tracks 表示所有方向
type TrackCompletionCriteria struct {
	TrackName *Track `json:"track_name,omitempty"`
	AllTracks bool   `json:"all_tracks,omitempty"`
}

// StreakCriteria 截至今天连续 N 个自然日都有学习记录
type StreakCriteria struct {
	Days int `json:"days"`
}

// ParseCriteria 解析成就条件 JSON；raw 为空或非法时返回错误，调用方按不可满足处理
func ParseCriteria(raw []byte) (*Criteria, error) {
	if len(raw) == 0 {
		return nil, ErrEmptyCriteria
	}
	var c Criteria
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// Empty 没有任何变体被填充
func (c *Criteria) Empty() bool {
	return c == nil ||
		(c.ModuleCompletion == nil && c.PerfectScore == nil && c.ScoreThreshold == nil &&
			c.ForumHelp == nil && c.TrackCompletion == nil && c.Streak == nil)
}

// RelevantTo 事件类型到可能满足的条件变体的映射。不相关的成就不进入求值，
// 即便其条件碰巧为真也不会被无关事件解锁。
func (c *Criteria) RelevantTo(event EventType) bool {
	if c == nil {
		return false
	}
	switch event {
	case EventModuleCompleted:
		return c.ModuleCompletion != nil || c.TrackCompletion != nil
	case EventAssessmentSubmitted:
		return c.PerfectScore != nil || c.ScoreThreshold != nil
	case EventForumPost:
		return c.ForumHelp != nil
	case EventStreak:
		return c.Streak != nil
	case EventTrackCompleted:
		return c.TrackCompletion != nil
	}
	return false
}

package request

type TaskRequest struct {
	Text        string   `json:"text" validate:"max=500"`
	Description string   `json:"description,omitempty" validate:"max=1000"`
	Priority    int      `json:"priority,omitempty" validate:"min=0,max=3"`
	DueDate     string   `json:"due_date,omitempty"`
	Tags        []string `json:"tags,omitempty" validate:"max=10,dive,max=32"`
}

// TaskPatchRequest carries the fields to change. Nil fields are left alone;
// an empty due date clears it.
type TaskPatchRequest struct {
	Text        *string   `json:"text,omitempty"`
	Description *string   `json:"description,omitempty"`
	Priority    *int      `json:"priority,omitempty"`
	DueDate     *string   `json:"due_date,omitempty"`
	Tags        *[]string `json:"tags,omitempty"`
	Completed   *bool     `json:"completed,omitempty"`
}

type Filter string

const (
	FilterAll       Filter = "all"
	FilterActive    Filter = "active"
	FilterCompleted Filter = "completed"
	FilterOverdue   Filter = "overdue"
)

type Sort string

const (
	SortPosition  Sort = "position"
	SortAlpha     Sort = "alpha"
	SortPriority  Sort = "priority"
	SortDue       Sort = "due"
	SortCreated   Sort = "created"
	SortRelevance Sort = "relevance"
)

type ListQuery struct {
	Filter Filter `form:"filter" validate:"omitempty,oneof=all active completed overdue"`
	Tag    string `form:"tag"`
	Search string `form:"q" validate:"max=200"`
	Sort   Sort   `form:"sort" validate:"omitempty,oneof=position alpha priority due created relevance"`
	Desc   bool   `form:"desc"`
	Limit  int    `form:"limit" validate:"min=0,max=100"`
	Cursor string `form:"cursor"`
}

type WeatherInputRequest struct {
	City string `json:"city" validate:"max=100"`
}

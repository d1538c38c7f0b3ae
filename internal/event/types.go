package event

// Hook event kinds as they appear on the wire. The capture side writes these
// strings verbatim, so they must never be renamed.
const (
	SessionStart       = "SessionStart"
	SessionEnd         = "SessionEnd"
	UserPromptSubmit   = "UserPromptSubmit"
	PreToolUse         = "PreToolUse"
	PostToolUse        = "PostToolUse"
	PostToolUseFailure = "PostToolUseFailure"
	ConfigChange       = "ConfigChange"
)

// StoredEvent is one line of a per-session event log. Timestamps are unix
// milliseconds; ordering is append order, assumed but not guaranteed to be
// timestamp-monotonic.
type StoredEvent struct {
	T       int64                  `json:"t"`
	Event   string                 `json:"event"`
	SID     string                 `json:"sid"`
	Data    map[string]interface{} `json:"data"`
	Context *SessionStartContext   `json:"context,omitempty"`
}

// SessionStartContext carries session metadata captured at start.
type SessionStartContext struct {
	Model           string `json:"model,omitempty"`
	Source          string `json:"source,omitempty"` // startup, resume, clear, compact
	CWD             string `json:"cwd,omitempty"`
	ParentSessionID string `json:"parent_session_id,omitempty"`
}

// Link event types. One shared `_links` log per project holds all of them,
// interleaved across sessions and processes.
const (
	LinkSpawn          = "spawn"
	LinkStop           = "stop"
	LinkMsgSend        = "msg_send"
	LinkTask           = "task"
	LinkTaskComplete   = "task_complete"
	LinkTeammateIdle   = "teammate_idle"
	LinkTeam           = "team"
	LinkSessionEnd     = "session_end"
	LinkConfigChange   = "config_change"
	LinkWorktreeCreate = "worktree_create"
	LinkWorktreeRemove = "worktree_remove"
)

// LinkEvent is one line of the shared links log. The Event field discriminates
// the variant; only the fields that variant carries are populated.
type LinkEvent struct {
	T     int64  `json:"t"`
	Event string `json:"event"`

	SID       string `json:"sid,omitempty"`        // owning session (stop, team, session_end, config_change, worktree_*)
	ParentSID string `json:"parent_sid,omitempty"` // spawn
	ChildSID  string `json:"child_sid,omitempty"`  // spawn

	AgentName string `json:"agent_name,omitempty"` // spawn, task_complete, teammate_idle
	AgentType string `json:"agent_type,omitempty"` // spawn

	TaskID string `json:"task_id,omitempty"` // task, task_complete
	Action string `json:"action,omitempty"`  // task: assign, start, done

	From string `json:"from,omitempty"` // msg_send
	To   string `json:"to,omitempty"`   // msg_send
	Text string `json:"text,omitempty"` // msg_send
}

// ToolName returns the tool name on a Pre/PostToolUse event, or "".
func (e StoredEvent) ToolName() string {
	return e.str("tool_name")
}

// ToolUseID returns the tool_use_id on a tool event, or "".
func (e StoredEvent) ToolUseID() string {
	return e.str("tool_use_id")
}

// FilePath returns the file path argument of a tool call, checking the
// tool_input's file_path then path keys.
func (e StoredEvent) FilePath() string {
	input, ok := e.Data["tool_input"].(map[string]interface{})
	if !ok {
		return ""
	}
	if p, ok := input["file_path"].(string); ok {
		return p
	}
	if p, ok := input["path"].(string); ok {
		return p
	}
	return ""
}

// InputString returns a string field from the tool_input payload, or "".
func (e StoredEvent) InputString(key string) string {
	input, ok := e.Data["tool_input"].(map[string]interface{})
	if !ok {
		return ""
	}
	s, _ := input[key].(string)
	return s
}

// Interrupted reports whether a failure event was a user interrupt rather
// than a genuine tool error.
func (e StoredEvent) Interrupted() bool {
	b, _ := e.Data["interrupted"].(bool)
	return b
}

// ErrorText returns the captured error message on a failure event, or "".
func (e StoredEvent) ErrorText() string {
	if s := e.str("error"); s != "" {
		return s
	}
	return e.str("error_message")
}

func (e StoredEvent) str(key string) string {
	if e.Data == nil {
		return ""
	}
	s, _ := e.Data[key].(string)
	return s
}

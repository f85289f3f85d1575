package domain

// ExecuteRequest is sent to the remote executor.
type ExecuteRequest struct {
	Command string `json:"command"`
}

// ExecuteResponse is the executor's answer for a single command.
type ExecuteResponse struct {
	Output             string `json:"output"`
	ExitCode           int    `json:"exit_code"`
	Directory          string `json:"directory,omitempty"`
	IsNaturalLanguage  bool   `json:"is_natural_language,omitempty"`
	Interpretation     string `json:"interpretation,omitempty"`
	InterpretedCommand string `json:"interpreted_command,omitempty"`
	OriginalInput      string `json:"original_input,omitempty"`
}

// Succeeded reports whether the command exited with status 0.
func (r ExecuteResponse) Succeeded() bool {
	return r.ExitCode == 0
}

// InterpretationText returns the notice shown before the result of a natural-language request.
// It is empty when the request was a plain command.
func (r ExecuteResponse) InterpretationText() string {
	if !r.IsNaturalLanguage {
		return ""
	}
	if r.Interpretation != "" {
		return r.Interpretation
	}
	if r.InterpretedCommand != "" {
		return "Interpreted: '" + r.OriginalInput + "' -> '" + r.InterpretedCommand + "'"
	}
	return ""
}

// SuggestRequest is sent to the remote suggestion service.
type SuggestRequest struct {
	Partial string `json:"partial"`
}

// SuggestResponse carries the remote completions.
type SuggestResponse struct {
	Suggestions []string `json:"suggestions"`
}

// Status is the executor's view of the terminal.
type Status struct {
	CurrentDirectory    string `json:"current_directory"`
	CommandHistoryCount int    `json:"command_history_count"`
	AIEnabled           bool   `json:"ai_enabled"`
}

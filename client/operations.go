package client

import "dapcore/message"

// IssueCommand issues an arbitrary command by name, for callers that
// dispatch by a string rather than a fixed method — a host-side
// middleware.Chain keyed by command name, a scripted test, a server-mode
// session relaying a command it doesn't statically know about. It applies
// the same Normal-state guard (and cancel's relaxed guard) as every named
// operation below, since it funnels through the same issueRequest.
//
// It does not reproduce a named method's side effects beyond issuing the
// request: issuing "disconnect" this way does not move the client to
// WaitingForShutdown the way Disconnect does. Callers that need that
// transition should call Disconnect directly.
func (c *Client) IssueCommand(command string, arguments any) (Seq, error) {
	return c.issueRequest("client.IssueCommand", command, arguments)
}

// Launch issues a launch request. arguments is adapter-specific and passed
// through verbatim.
func (c *Client) Launch(arguments any) (Seq, error) {
	return c.issueRequest("client.Launch", string(message.CommandLaunch), arguments)
}

// Attach issues an attach request. arguments is adapter-specific and passed
// through verbatim.
func (c *Client) Attach(arguments any) (Seq, error) {
	return c.issueRequest("client.Attach", string(message.CommandAttach), arguments)
}

// SetBreakpointsArguments is the argument shape for SetBreakpoints.
type SetBreakpointsArguments struct {
	Source struct {
		Path string `json:"path,omitempty"`
		Name string `json:"name,omitempty"`
	} `json:"source"`
	Breakpoints []SourceBreakpoint `json:"breakpoints,omitempty"`
	Lines       []int              `json:"lines,omitempty"`
}

// SourceBreakpoint is a single requested line breakpoint.
type SourceBreakpoint struct {
	Line      int    `json:"line"`
	Column    int    `json:"column,omitempty"`
	Condition string `json:"condition,omitempty"`
}

func (c *Client) SetBreakpoints(args SetBreakpointsArguments) (Seq, error) {
	return c.issueRequest("client.SetBreakpoints", string(message.CommandSetBreakpoints), args)
}

func (c *Client) SetFunctionBreakpoints(arguments any) (Seq, error) {
	return c.issueRequest("client.SetFunctionBreakpoints", string(message.CommandSetFunctionBreakpoints), arguments)
}

func (c *Client) SetExceptionBreakpoints(arguments any) (Seq, error) {
	return c.issueRequest("client.SetExceptionBreakpoints", string(message.CommandSetExceptionBreakpoints), arguments)
}

func (c *Client) SetDataBreakpoints(arguments any) (Seq, error) {
	return c.issueRequest("client.SetDataBreakpoints", string(message.CommandSetDataBreakpoints), arguments)
}

func (c *Client) SetInstructionBreakpoints(arguments any) (Seq, error) {
	return c.issueRequest("client.SetInstructionBreakpoints", string(message.CommandSetInstructionBreakpoints), arguments)
}

// ConfigurationDone issues a configurationDone request, ending the
// configuration phase that follows a successful initialize handshake.
func (c *Client) ConfigurationDone() (Seq, error) {
	return c.issueRequest("client.ConfigurationDone", string(message.CommandConfigurationDone), nil)
}

// ContinueArguments is the argument shape for ContinueExecution.
type ContinueArguments struct {
	ThreadID     int  `json:"threadId"`
	SingleThread bool `json:"singleThread,omitempty"`
}

// ContinueExecution issues a continue request. Named to avoid colliding
// with the continue keyword.
func (c *Client) ContinueExecution(args ContinueArguments) (Seq, error) {
	return c.issueRequest("client.ContinueExecution", string(message.CommandContinue), args)
}

// SteppingArguments is the common argument shape for Next, StepIn, StepOut,
// and StepBack.
type SteppingArguments struct {
	ThreadID     int    `json:"threadId"`
	SingleThread bool   `json:"singleThread,omitempty"`
	Granularity  string `json:"granularity,omitempty"`
}

func (c *Client) Next(args SteppingArguments) (Seq, error) {
	return c.issueRequest("client.Next", string(message.CommandNext), args)
}

func (c *Client) StepIn(args SteppingArguments) (Seq, error) {
	return c.issueRequest("client.StepIn", string(message.CommandStepIn), args)
}

func (c *Client) StepOut(args SteppingArguments) (Seq, error) {
	return c.issueRequest("client.StepOut", string(message.CommandStepOut), args)
}

// StepBack issues a stepBack request (reverse debugging, supplemented from
// the original source's command catalog).
func (c *Client) StepBack(args SteppingArguments) (Seq, error) {
	return c.issueRequest("client.StepBack", string(message.CommandStepBack), args)
}

// ReverseContinue issues a reverseContinue request (reverse debugging,
// supplemented from the original source's command catalog).
func (c *Client) ReverseContinue(args ContinueArguments) (Seq, error) {
	return c.issueRequest("client.ReverseContinue", string(message.CommandReverseContinue), args)
}

type PauseArguments struct {
	ThreadID int `json:"threadId"`
}

func (c *Client) Pause(args PauseArguments) (Seq, error) {
	return c.issueRequest("client.Pause", string(message.CommandPause), args)
}

type StackTraceArguments struct {
	ThreadID   int `json:"threadId"`
	StartFrame int `json:"startFrame,omitempty"`
	Levels     int `json:"levels,omitempty"`
}

func (c *Client) StackTrace(args StackTraceArguments) (Seq, error) {
	return c.issueRequest("client.StackTrace", string(message.CommandStackTrace), args)
}

type ScopesArguments struct {
	FrameID int `json:"frameId"`
}

func (c *Client) Scopes(args ScopesArguments) (Seq, error) {
	return c.issueRequest("client.Scopes", string(message.CommandScopes), args)
}

type VariablesArguments struct {
	VariablesReference int    `json:"variablesReference"`
	Filter             string `json:"filter,omitempty"`
	Start              int    `json:"start,omitempty"`
	Count              int    `json:"count,omitempty"`
}

func (c *Client) Variables(args VariablesArguments) (Seq, error) {
	return c.issueRequest("client.Variables", string(message.CommandVariables), args)
}

type SetVariableArguments struct {
	VariablesReference int    `json:"variablesReference"`
	Name               string `json:"name"`
	Value              string `json:"value"`
}

func (c *Client) SetVariable(args SetVariableArguments) (Seq, error) {
	return c.issueRequest("client.SetVariable", string(message.CommandSetVariable), args)
}

func (c *Client) SetExpression(arguments any) (Seq, error) {
	return c.issueRequest("client.SetExpression", string(message.CommandSetExpression), arguments)
}

type SourceArguments struct {
	SourceReference int `json:"sourceReference"`
}

func (c *Client) Source(args SourceArguments) (Seq, error) {
	return c.issueRequest("client.Source", string(message.CommandSource), args)
}

// Threads issues a threads request; it takes no arguments.
func (c *Client) Threads() (Seq, error) {
	return c.issueRequest("client.Threads", string(message.CommandThreads), nil)
}

type EvaluateArguments struct {
	Expression string `json:"expression"`
	FrameID    int    `json:"frameId,omitempty"`
	Context    string `json:"context,omitempty"`
}

func (c *Client) Evaluate(args EvaluateArguments) (Seq, error) {
	return c.issueRequest("client.Evaluate", string(message.CommandEvaluate), args)
}

func (c *Client) ExceptionInfo(arguments any) (Seq, error) {
	return c.issueRequest("client.ExceptionInfo", string(message.CommandExceptionInfo), arguments)
}

func (c *Client) LoadedSources() (Seq, error) {
	return c.issueRequest("client.LoadedSources", string(message.CommandLoadedSources), nil)
}

func (c *Client) Modules(arguments any) (Seq, error) {
	return c.issueRequest("client.Modules", string(message.CommandModules), arguments)
}

func (c *Client) Completions(arguments any) (Seq, error) {
	return c.issueRequest("client.Completions", string(message.CommandCompletions), arguments)
}

func (c *Client) BreakpointLocations(arguments any) (Seq, error) {
	return c.issueRequest("client.BreakpointLocations", string(message.CommandBreakpointLocations), arguments)
}

func (c *Client) DataBreakpointInfo(arguments any) (Seq, error) {
	return c.issueRequest("client.DataBreakpointInfo", string(message.CommandDataBreakpointInfo), arguments)
}

func (c *Client) Disassemble(arguments any) (Seq, error) {
	return c.issueRequest("client.Disassemble", string(message.CommandDisassemble), arguments)
}

func (c *Client) ReadMemory(arguments any) (Seq, error) {
	return c.issueRequest("client.ReadMemory", string(message.CommandReadMemory), arguments)
}

func (c *Client) WriteMemory(arguments any) (Seq, error) {
	return c.issueRequest("client.WriteMemory", string(message.CommandWriteMemory), arguments)
}

func (c *Client) Locations(arguments any) (Seq, error) {
	return c.issueRequest("client.Locations", string(message.CommandLocations), arguments)
}

func (c *Client) StepInTargets(arguments any) (Seq, error) {
	return c.issueRequest("client.StepInTargets", string(message.CommandStepInTargets), arguments)
}

func (c *Client) GotoTargets(arguments any) (Seq, error) {
	return c.issueRequest("client.GotoTargets", string(message.CommandGotoTargets), arguments)
}

// Goto issues a goto request (supplemented from the original source's
// command catalog).
func (c *Client) Goto(arguments any) (Seq, error) {
	return c.issueRequest("client.Goto", string(message.CommandGoto), arguments)
}

// RestartFrame issues a restartFrame request (supplemented from the
// original source's command catalog).
func (c *Client) RestartFrame(arguments any) (Seq, error) {
	return c.issueRequest("client.RestartFrame", string(message.CommandRestartFrame), arguments)
}

// Restart issues a restart request (supplemented from the original
// source's command catalog). Adapters that do not support it respond with
// success == false, surfaced as an ordinary ResponseDelivery event.
func (c *Client) Restart(arguments any) (Seq, error) {
	return c.issueRequest("client.Restart", string(message.CommandRestart), arguments)
}

// Terminate issues a terminate request (supplemented from the original
// source's command catalog): a graceful request that the debuggee end,
// distinct from Disconnect which ends the debug session itself.
func (c *Client) Terminate(arguments any) (Seq, error) {
	return c.issueRequest("client.Terminate", string(message.CommandTerminate), arguments)
}

func (c *Client) TerminateThreads(arguments any) (Seq, error) {
	return c.issueRequest("client.TerminateThreads", string(message.CommandTerminateThreads), arguments)
}

// CancelArguments targets either an in-flight request (by its seq) or a
// long-running progress sequence (by its progress ID).
type CancelArguments = message.CancelArguments

// Cancel issues a cancel request. Unlike every other request-issuing
// operation, it is permitted in any non-terminal state: a client may need
// to cancel a request while still waiting on initialize, or while winding
// down toward shutdown.
func (c *Client) Cancel(args CancelArguments) (Seq, error) {
	return c.issueRequest("client.Cancel", string(message.CommandCancel), args)
}

type DisconnectArguments struct {
	Restart           bool `json:"restart,omitempty"`
	TerminateDebuggee bool `json:"terminateDebuggee,omitempty"`
}

// Disconnect issues a disconnect request and transitions the client to
// WaitingForShutdown. Its response, when it arrives, is delivered as a
// Lifecycle "terminated" event and moves the client to Shutdown.
func (c *Client) Disconnect(args DisconnectArguments) (Seq, error) {
	seq, err := c.issueRequest("client.Disconnect", string(message.CommandDisconnect), args)
	if err != nil {
		return 0, err
	}
	c.state = WaitingForShutdown
	return seq, nil
}

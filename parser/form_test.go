package parser

import (
	"testing"

	"github.com/gloop-agent/gloop/agent"
)

func TestParseToFormPlainProseBecomesNil(t *testing.T) {
	form := ParseToForm("just some prose, no tool calls")
	if form.Tag != agent.TagNil {
		t.Fatalf("Tag = %v, want TagNil for prose with no memory ops and no tool calls", form.Tag)
	}
}

func TestParseToFormCompleteTaskBecomesDone(t *testing.T) {
	form := ParseToForm(`<tool>CompleteTask(all finished)</tool>`)
	if form.Tag != agent.TagDone {
		t.Fatalf("Tag = %v, want TagDone", form.Tag)
	}
	if form.Summary != "all finished" {
		t.Fatalf("Summary = %q", form.Summary)
	}
}

func TestParseToFormRebootBecomesReboot(t *testing.T) {
	form := ParseToForm(`<tool>Reboot(need to reload tools)</tool>`)
	if form.Tag != agent.TagReboot {
		t.Fatalf("Tag = %v, want TagReboot", form.Tag)
	}
	if form.Reason != "need to reload tools" {
		t.Fatalf("Reason = %q", form.Reason)
	}
}

func TestParseToFormRebootPreemptsCompleteTaskWhenBothPresent(t *testing.T) {
	form := ParseToForm(`<tool>CompleteTask(done)</tool><tool>Reboot(restart)</tool>`)
	if form.Tag != agent.TagReboot {
		t.Fatalf("Tag = %v, want TagReboot (reboot must preempt complete)", form.Tag)
	}
}

func TestParseToFormRegularCallsBecomeInvokeThenThink(t *testing.T) {
	form := ParseToForm(`<tool>Read(a.txt)</tool>`)
	if form.Tag != agent.TagInvoke {
		t.Fatalf("Tag = %v, want TagInvoke", form.Tag)
	}
	if len(form.Calls) != 1 || form.Calls[0].Name != "Read" {
		t.Fatalf("Calls = %+v", form.Calls)
	}
	next := form.ThenCalls([]agent.ToolResult{{Name: "Read", Output: "contents", Success: true}})
	if next.Tag != agent.TagThink {
		t.Fatalf("continuation Tag = %v, want TagThink", next.Tag)
	}
}

func TestParseToFormRegularCallsWithTerminalRunsInvokeThenTerminal(t *testing.T) {
	form := ParseToForm(`<tool>Read(a.txt)</tool><tool>CompleteTask(done reading)</tool>`)
	if form.Tag != agent.TagInvoke {
		t.Fatalf("Tag = %v, want TagInvoke", form.Tag)
	}
	next := form.ThenCalls([]agent.ToolResult{{Name: "Read", Output: "x", Success: true}})
	if next.Tag != agent.TagDone || next.Summary != "done reading" {
		t.Fatalf("continuation = %+v", next)
	}
}

func TestParseToFormMemoryOpsBecomeSeqPrefix(t *testing.T) {
	form := ParseToForm(`<remember>likes dark mode</remember><tool>CompleteTask(noted)</tool>`)
	if form.Tag != agent.TagSeq {
		t.Fatalf("Tag = %v, want TagSeq", form.Tag)
	}
	if len(form.Forms) != 2 {
		t.Fatalf("Forms = %+v", form.Forms)
	}
	if form.Forms[0].Tag != agent.TagRemember || form.Forms[0].Content != "likes dark mode" {
		t.Fatalf("Forms[0] = %+v", form.Forms[0])
	}
	if form.Forms[1].Tag != agent.TagDone {
		t.Fatalf("Forms[1] = %+v", form.Forms[1])
	}
}

func TestParseToFormDetectsSpawnInsideBashCall(t *testing.T) {
	form := ParseToForm(`<tool>Bash(gloop --task "summarize the repo")</tool>`)
	if form.Tag != agent.TagSpawn {
		t.Fatalf("Tag = %v, want TagSpawn", form.Tag)
	}
	if form.Task != "summarize the repo" {
		t.Fatalf("Task = %q", form.Task)
	}
}

func TestParseToFormSpawnChainResumesWithThinkAfterAllSpawns(t *testing.T) {
	form := ParseToForm(`<tool>Bash(gloop --task "one")</tool><tool>Bash(gloop --task "two")</tool>`)
	if form.Tag != agent.TagSpawn {
		t.Fatalf("Tag = %v, want TagSpawn", form.Tag)
	}
	next := form.ThenSpawn(agent.SpawnResult{Success: true, Summary: "result one"})
	if next.Tag != agent.TagSpawn {
		t.Fatalf("second link Tag = %v, want TagSpawn", next.Tag)
	}
	final := next.ThenSpawn(agent.SpawnResult{Success: true, Summary: "result two"})
	if final.Tag != agent.TagThink {
		t.Fatalf("final Tag = %v, want TagThink", final.Tag)
	}
	if final.Input == "" {
		t.Fatal("expected the resuming Think to carry the accumulated spawn results")
	}
}

func TestParseToFormPlainCallsMixedWithSpawnInvokesFirst(t *testing.T) {
	form := ParseToForm(`<tool>Read(a.txt)</tool><tool>Bash(gloop --task "go")</tool>`)
	if form.Tag != agent.TagInvoke {
		t.Fatalf("Tag = %v, want TagInvoke (plain calls run before the spawn chain)", form.Tag)
	}
	next := form.ThenCalls([]agent.ToolResult{{Name: "Read", Output: "x", Success: true}})
	if next.Tag != agent.TagSpawn {
		t.Fatalf("continuation Tag = %v, want TagSpawn", next.Tag)
	}
}

package agent

import "context"

// Eval is the trampoline: an explicit LIFO work
// stack replaces native recursion so long Seq/Invoke/Think chains cannot grow
// the Go call stack unboundedly. Every pop checks world.Cancellation first.
//
// Popping a terminal form (Done, Reboot, Refresh, Install, ListTools,
// ListSessions, Resume) ends
// the whole call even if the stack still holds siblings from an enclosing
// Seq — this is what "Reboot never returns" and "Done is terminal" mean in
// practice. Popping Nil is a no-op that just continues the loop, which is
// what makes Nil the identity element of Seq.
func Eval(ctx context.Context, world *World, form Form, effects Effects) error {
	if ctx == nil {
		return ErrContextNil
	}
	stack := []Form{form}
	for len(stack) > 0 {
		if world.Cancellation.Fired() {
			return ErrAborted
		}
		n := len(stack) - 1
		cur := stack[n]
		stack = stack[:n]

		switch cur.Tag {
		case TagNil:
			continue

		case TagDone:
			effects.Complete(ctx, cur.Summary)
			return nil

		case TagSeq:
			for i := len(cur.Forms) - 1; i >= 0; i-- {
				stack = append(stack, cur.Forms[i])
			}

		case TagEmit:
			effects.StreamChunk(ctx, cur.Content)
			effects.StreamDone(ctx)
			stack = append(stack, *cur.Then)

		case TagRemember:
			if err := effects.Remember(ctx, cur.Content); err != nil {
				return err
			}
			stack = append(stack, *cur.Then)

		case TagForget:
			if err := effects.Forget(ctx, cur.Content); err != nil {
				return err
			}
			stack = append(stack, *cur.Then)

		case TagConfirm:
			ok, err := effects.Confirm(ctx, cur.Command)
			if err != nil {
				return err
			}
			stack = append(stack, cur.ThenBool(ok))

		case TagAsk:
			answer, err := effects.Ask(ctx, cur.Question)
			if err != nil {
				return err
			}
			stack = append(stack, cur.ThenText(answer))

		case TagRefresh:
			err := effects.RefreshSystem(ctx)
			_ = err // Refresh is terminal regardless of outcome; any error is returned to the caller.
			return err

		case TagReboot:
			return effects.Reboot(ctx, cur.Reason, world.Conversation)

		case TagInstall:
			result, err := effects.InstallTool(ctx, cur.Source)
			if err != nil {
				result = err.Error()
			}
			effects.StreamChunk(ctx, result)
			effects.StreamDone(ctx)
			return nil

		case TagListTools:
			result, err := effects.ListTools(ctx)
			if err != nil {
				result = err.Error()
			}
			effects.StreamChunk(ctx, result)
			effects.StreamDone(ctx)
			return nil

		case TagListSessions:
			result, err := effects.ListSessions(ctx)
			if err != nil {
				result = err.Error()
			}
			effects.StreamChunk(ctx, result)
			effects.StreamDone(ctx)
			return nil

		case TagResume:
			result, err := effects.ResumeSession(ctx, cur.RunID)
			if err != nil {
				result = err.Error()
			}
			effects.StreamChunk(ctx, result)
			effects.StreamDone(ctx)
			return nil

		case TagSpawn:
			result, err := effects.Spawn(ctx, cur.Task)
			if err != nil {
				return err
			}
			stack = append(stack, cur.ThenSpawn(result))

		case TagThink:
			next, err := runThink(ctx, world, cur.Input, effects)
			if err != nil {
				return err
			}
			stack = append(stack, next)

		case TagInvoke:
			next, err := runInvoke(ctx, world, cur.Calls, cur.ThenCalls, effects)
			if err != nil {
				return err
			}
			stack = append(stack, next)
		}
	}
	return nil
}

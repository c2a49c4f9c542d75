package agent

import "strings"

// TeeResponseText forwards every streamed response piece unchanged to the
// returned channel while accumulating the full text. After the last piece has
// been forwarded, exactly one final agent transcript is published; a blank
// response publishes nothing. The accumulator and the publish add no blocking
// step to the per-piece forwarding path.
func (inj *Injector) TeeResponseText(pieces <-chan string) <-chan string {
	out := make(chan string)
	go func() {
		defer close(out)

		var full strings.Builder
		for piece := range pieces {
			full.WriteString(piece)
			out <- piece
		}

		text := strings.TrimSpace(full.String())
		if text == "" {
			return
		}
		inj.logger.Info("Agent response", "text", truncate(text, 120))
		inj.observer.Publish(NewAgentTranscript(text))
	}()
	return out
}

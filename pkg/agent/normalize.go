package agent

import (
	"context"
	"strings"
	"time"

	"github.com/moviops/movi/pkg/domain"
	"github.com/moviops/movi/pkg/ports"
)

// normalize turns raw input into a comprehension record. Comprehension
// failures degrade confidence instead of failing the turn; downstream
// stages still get a record to attempt a clarification with.
func (p *Pipeline) normalize(ctx context.Context, st *domain.TurnState) {
	defer p.observeStage(domain.StageNormalize, time.Now())

	if p.comprehender == nil {
		st.Comprehension = textComprehension(st.Input)
		return
	}

	rec, err := p.comprehend(ctx, ports.ComprehensionInput{
		Text:        st.Input,
		Media:       st.Media,
		PageContext: st.PageContext,
	})
	if err != nil || rec == nil {
		p.logger.Warn("comprehension degraded",
			"session_id", st.SessionID, "err", err)
		rec = textComprehension(st.Input)
		rec.Modality = dominantModality(st.Media)
		rec.Confidence = domain.ConfidenceLow
		rec.Degraded = true
	}
	if rec.Gloss == "" {
		rec.Gloss = st.Input
	}
	st.Comprehension = rec
}

// textComprehension is the trivial record for plain text input.
func textComprehension(input string) *domain.Comprehension {
	return &domain.Comprehension{
		Modality:   domain.ModalityText,
		Gloss:      input,
		Confidence: domain.ConfidenceHigh,
	}
}

// dominantModality picks the modality tag for a turn from its first media
// blob; text otherwise.
func dominantModality(media []domain.Media) domain.Modality {
	if len(media) == 0 {
		return domain.ModalityText
	}
	switch {
	case strings.HasPrefix(media[0].MIMEType, "audio/"):
		return domain.ModalityAudio
	case strings.HasPrefix(media[0].MIMEType, "image/"):
		return domain.ModalityImage
	case strings.HasPrefix(media[0].MIMEType, "video/"):
		return domain.ModalityVideo
	default:
		return domain.ModalityText
	}
}

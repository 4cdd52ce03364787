package engine

// #region imports
import (
	"context"
	"encoding/json"
	"log"

	"github.com/danielpatrickdp/disposition-engine/internal/audit"
	"github.com/danielpatrickdp/disposition-engine/internal/bus"
)

// #endregion

// #region audit-bridge

// AuditBridge mirrors cascade outcomes into the audit trail. Recording is
// best effort: a failed insert is logged and never disturbs the cascade.
type AuditBridge struct {
	trail *audit.Trail
}

// NewAuditBridge subscribes the bridge to every outcome kind.
func NewAuditBridge(b *bus.Bus, trail *audit.Trail) *AuditBridge {
	br := &AuditBridge{trail: trail}
	for _, kind := range []bus.Kind{
		bus.KindStateChanged,
		bus.KindTriggerIgnored,
		bus.KindRewardGranted,
		bus.KindMilestoneReached,
	} {
		b.Subscribe(kind, br.onEvent)
	}
	return br
}

func (br *AuditBridge) onEvent(ctx context.Context, evt bus.Event) error {
	detail, err := json.Marshal(evt)
	if err != nil {
		log.Printf("[AUDIT] marshal %s: %v", evt.Kind(), err)
		detail = nil
	}

	err = br.trail.Record(ctx, audit.Entry{
		StimulusID: bus.StimulusIDFrom(ctx),
		EntityID:   evt.EntityID(),
		Kind:       string(evt.Kind()),
		DetailJSON: string(detail),
	})
	if err != nil {
		log.Printf("[AUDIT] record %s entity=%s: %v", evt.Kind(), evt.EntityID(), err)
	}
	return nil
}

// #endregion audit-bridge

// Package events provides a loosely coupled publish/subscribe aggregator.
//
//	agg := events.NewEventAggregator()
//	token := agg.GetEvent(events.LoadModuleCompleted).Subscribe(func(ctx context.Context, p interface{}) {
//	    ...
//	})
//	agg.GetEvent(events.LoadModuleCompleted).Publish(ctx, payload)
package events

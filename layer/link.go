package layer

import "github.com/neurlang/netengine/channel"

// Link makes the output list of producer the input list of consumer. The list
// is shared, not copied: every channel is retagged as a not started input, and
// the retagging is visible through producer.Outputs() as well.
func Link(producer, consumer *Layer) error {
	if producer == nil || consumer == nil {
		return ErrInvalidArgument
	}
	consumer.inputs = producer.outputs
	consumer.inputs.Each(func(c *channel.Channel) bool {
		c.Role = channel.Input
		c.State = channel.NotStarted
		return true
	})
	return nil
}

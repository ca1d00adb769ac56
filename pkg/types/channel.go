package types

// Channel is the raw label of one measurement stream, e.g. "active".
// Each channel is dumped to its own file per date.
type Channel string

const (
	ChannelActive   Channel = "active"
	ChannelReactive Channel = "reactive"
)

// Measurement is the two-level column label used by canonical frames.
type Measurement struct {
	Physical string `json:"physical_quantity" toml:"physical_quantity"`
	Type     string `json:"type" toml:"type"`
}

func (m Measurement) String() string {
	return m.Physical + "/" + m.Type
}

// FileTemplate names a channel's dump file: <Prefix><date><Suffix>.csv
type FileTemplate struct {
	Prefix string
	Suffix string
}

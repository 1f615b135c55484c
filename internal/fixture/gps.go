package fixture

import (
	"github.com/arloliu/dlf/format"
)

// GPS run constants, taken from a recorded logger session.
const (
	GPSEpochTimeS = 1763485651
	GPSTickBaseUs = 100000
	GPSTickSpan   = 1832
)

// GPSStreams are the polled streams of the recorded GPS run.
var GPSStreams = []Stream{
	{Structure: "uint32_t", ID: "gpsData.satellites", Notes: "N/A", TypeSize: 4, Interval: 50},
	{Structure: "double", ID: "gpsData.lat", Notes: "N/A", TypeSize: 8, Interval: 10},
	{Structure: "double", ID: "gpsData.lng", Notes: "N/A", TypeSize: 8, Interval: 10},
	{Structure: "double", ID: "gpsData.alt", Notes: "N/A", TypeSize: 8, Interval: 10},
}

// GPSValue returns the GPS sample of stream idx at tick. The tick 0 samples
// match the recorded run: 3 satellites at 35.3053619, -120.6720945, 85.306 m.
func GPSValue(idx int, tick uint64) []byte {
	step := float64(tick / 10)
	switch idx {
	case 0:
		return U32(3 + uint32(tick/50)%5) //nolint:gosec
	case 1:
		return F64(35.3053619 + step*1e-5)
	case 2:
		return F64(-120.6720945 - step*1e-5)
	default:
		return F64(85.306 + step*0.1)
	}
}

// GPSMeta is the meta stream of the GPS run; its payload is a single double.
func GPSMeta() []byte {
	return MetaBytes(Meta{
		EpochTimeS: GPSEpochTimeS,
		TickBaseUs: GPSTickBaseUs,
		Structure:  "double",
		Payload:    F64(1.5),
	})
}

// GPSPolled is the complete polled logfile of the GPS run.
func GPSPolled() []byte {
	return Polled(GPSTickSpan, GPSStreams, GPSValue)
}

// GPSEvents is the event logfile of the GPS run, which declares no streams.
func GPSEvents() []byte {
	return Header(format.StreamEvent, GPSTickSpan, nil)
}

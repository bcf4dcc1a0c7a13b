package sim

// Simulated time charged per operation, in abstract cycles.
const (
	LdStTime      uint64 = 1
	CtxSwitchTime uint64 = 130
	ProcExitTime  uint64 = 1230
	MapsTime      uint64 = 350
	UnmapsTime    uint64 = 410
	InsTime       uint64 = 3200
	OutsTime      uint64 = 2750
	FinsTime      uint64 = 2350
	FoutsTime     uint64 = 2800
	ZerosTime     uint64 = 150
	SegvTime      uint64 = 440
	SegprotTime   uint64 = 410
)

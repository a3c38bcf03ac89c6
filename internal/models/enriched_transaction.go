package models

// JoinStatus records how a transaction's own parcel was found.
type JoinStatus string

const (
	// JoinStatusJoined means the APN matched the parcel master directly.
	JoinStatusJoined JoinStatus = "joined"
	// JoinStatusResolved means the APN matched after history resolution.
	JoinStatusResolved JoinStatus = "resolved"
	// JoinStatusAmbiguous means the APN was split into several parcels;
	// the successors are listed and none was picked.
	JoinStatusAmbiguous JoinStatus = "ambiguous"
	// JoinStatusMissing means no parcel was found.
	JoinStatusMissing JoinStatus = "missing"
)

// EnrichedTransaction is a retained transaction joined to its own parcel
// with the derived transfer classification fields.
//
// Transaction.APN holds the identifier used for the final join; when history
// resolution replaced it, OriginalAPN keeps the reported value.
type EnrichedTransaction struct {
	Transaction
	Parcel                                 *Parcel     `json:"parcel,omitempty"`
	OriginalAPN                            string      `json:"OriginalAPN"`
	JoinStatus                             JoinStatus  `json:"JoinStatus"`
	Successors                             []string    `json:"Successors,omitempty"`
	SensitivityTransition                  string      `json:"Sensitivity_Transition"`
	TownCenterTransition                   string      `json:"TownCenter_Transition"`
	LandSensitivityAndTownCenterTransition string      `json:"LandSensitivity_and_TownCenter_Transition"`
	Role                                   Role        `json:"SendingVsReceiving"`
	Sensitivity                            Sensitivity `json:"LandCapabilityCategory"`
	CounterpartSensitivity                 Sensitivity `json:"CounterpartSensitivity"`
	TownCenter                             TownCenter  `json:"LOCATION_TO_TOWNCENTER"`
	CounterpartTownCenter                  TownCenter  `json:"CounterpartTownCenter"`
}

// Renumbered reports whether history resolution replaced the reported APN.
func (e EnrichedTransaction) Renumbered() bool {
	return e.OriginalAPN != "" && e.OriginalAPN != e.APN
}

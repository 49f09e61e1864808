package formats

// init registra i dialetti noti
func init() {
	RegisterFormat(Classic, NewClassic)
	RegisterFormat(Extended, NewExtended)

	// alias usati dai vecchi file di configurazione
	RegisterFormat("v1", NewClassic)
	RegisterFormat("v2", NewExtended)
}

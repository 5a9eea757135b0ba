package gamepad

// Assemble builds a connected State from one raw reading.
func Assemble(raw RawReading, limits Limits, mode DeadZone) State {
	b := raw.Buttons
	state := State{
		Connected: true,
		Packet:    raw.Packet,
		Buttons: ButtonsState{
			A:             b.Has(MaskA),
			B:             b.Has(MaskB),
			X:             b.Has(MaskX),
			Y:             b.Has(MaskY),
			LeftStick:     b.Has(MaskLeftStick),
			RightStick:    b.Has(MaskRightStick),
			LeftShoulder:  b.Has(MaskLeftShoulder),
			RightShoulder: b.Has(MaskRightShoulder),
			Back:          b.Has(MaskBack),
			Start:         b.Has(MaskStart),
		},
		DPad: DPadState{
			Up:    b.Has(MaskDPadUp),
			Down:  b.Has(MaskDPadDown),
			Left:  b.Has(MaskDPadLeft),
			Right: b.Has(MaskDPadRight),
		},
	}

	threshold := limits.TriggerThreshold
	if mode == DeadZoneNone {
		threshold = 0
	}
	state.Triggers.Left = ApplyLinearDeadZone(raw.LeftTrigger, limits.TriggerMax, threshold)
	state.Triggers.Right = ApplyLinearDeadZone(raw.RightTrigger, limits.TriggerMax, threshold)

	state.ThumbSticks.LeftX, state.ThumbSticks.LeftY = ApplyStickDeadZone(
		raw.LeftX, raw.LeftY, mode, limits.StickMax, limits.LeftStickDeadZone)
	state.ThumbSticks.RightX, state.ThumbSticks.RightY = ApplyStickDeadZone(
		raw.RightX, raw.RightY, mode, limits.StickMax, limits.RightStickDeadZone)

	return state
}

package domain

// ImagePayload is a profile image supplied with a registration, carried
// explicitly on the event so no handler has to reach back into request state.
type ImagePayload struct {
	Name string
	Data []byte
}

// RegistrationEvent is the ephemeral message published after a client (and
// its optional user) has been durably committed. User and Image may be nil;
// subscribers must guard accordingly. The referenced records are already
// persisted; handlers must not assume the event outlives their invocation.
type RegistrationEvent struct {
	Client Client
	User   *User
	Image  *ImagePayload
}

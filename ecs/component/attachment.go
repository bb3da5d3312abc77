package component

// Attachment places an actor in its parent's space. The world transform
// of an attached actor is parent world * socket * Local.
type Attachment struct {
	Parent uint64
	Socket string
	Local  Transform
}

var AttachmentComponent = NewComponent[Attachment]()

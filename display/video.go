package display

// Default video surface size, matching the legacy platform.
const (
	defaultVideoWidth  = 320
	defaultVideoHeight = 240
)

type videoData struct {
	width  int
	height int
}

// NewVideo creates a video leaf node with the default 320x240 surface.
func NewVideo(name string) *Object {
	return &Object{
		kind:      KindVideo,
		name:      name,
		videoData: &videoData{width: defaultVideoWidth, height: defaultVideoHeight},
	}
}

// VideoSize returns the video surface size, or zeros for non-video nodes.
func (o *Object) VideoSize() (width, height int) {
	if o.videoData == nil {
		return 0, 0
	}
	return o.videoData.width, o.videoData.height
}

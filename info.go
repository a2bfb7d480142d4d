package exrplanes

import "io"

// ChannelInfo describes one channel of a file.
type ChannelInfo struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Info summarizes a file header.
type Info struct {
	Width         int           `json:"width"`
	Height        int           `json:"height"`
	DataWindow    Box2i         `json:"dataWindow"`
	DisplayWindow Box2i         `json:"displayWindow"`
	Channels      []ChannelInfo `json:"channels"`
	Compression   string        `json:"compression"`
	HasAlpha      bool          `json:"hasAlpha"`
}

// Inspect reads only the header of rs.
func Inspect(rs io.ReadSeeker) (*Info, error) {
	dec, err := NewDecoder(rs)
	if err != nil {
		return nil, &DecodeError{Err: err}
	}
	defer dec.Close()
	info, err := headerInfo(dec.Header())
	if err != nil {
		return nil, &DecodeError{Err: err}
	}
	return info, nil
}

// InspectFile reads only the header of the file at path.
func InspectFile(path string) (*Info, error) {
	dec, err := FileCodec{}.OpenDecoder(path)
	if err != nil {
		return nil, &DecodeError{Path: path, Err: err}
	}
	defer dec.Close()
	info, err := headerInfo(dec.Header())
	if err != nil {
		return nil, &DecodeError{Path: path, Err: err}
	}
	return info, nil
}

func headerInfo(h *Header) (*Info, error) {
	g, err := resolveGeometry(h)
	if err != nil {
		return nil, err
	}
	info := &Info{
		Width:         g.width,
		Height:        g.height,
		DataWindow:    h.DataWindow,
		DisplayWindow: h.DisplayWindow,
		Compression:   h.Compression.String(),
	}
	for i := 0; i < h.Channels.Len(); i++ {
		ch := h.Channels.At(i)
		info.Channels = append(info.Channels, ChannelInfo{Name: ch.Name, Type: ch.Type.String()})
		if ch.Name == ChannelA {
			info.HasAlpha = true
		}
	}
	return info, nil
}

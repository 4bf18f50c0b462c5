package postprocess

// TextureRect returns the full pixel rectangle of a texture.
//
// Parameters:
//   - t: the texture
//
// Returns:
//   - Rect: (0, 0, width, height)
func TextureRect(t Texture) Rect {
	return Rect{W: t.Width(), H: t.Height()}
}

// TextureCoords computes the texture coordinates a full-target quad must span so that the
// source sub-rectangle lands exactly on the destination sub-rectangle. A nil rectangle means
// the whole texture.
//
// Parameters:
//   - src: the sampled texture
//   - srcRect: the region of src to read, or nil
//   - dst: the render target
//   - dstRect: the region of dst to write, or nil
//
// Returns:
//   - CoordRect: the coordinates at the target's corners
func TextureCoords(src Texture, srcRect *Rect, dst Texture, dstRect *Rect) CoordRect {
	c := CoordRect{U0: 0, V0: 0, U1: 1, V1: 1}

	if srcRect != nil {
		w, h := float32(src.Width()), float32(src.Height())
		c.U0 += float32(srcRect.X) / w
		c.V0 += float32(srcRect.Y) / h
		c.U1 -= float32(src.Width()-(srcRect.X+srcRect.W)) / w
		c.V1 -= float32(src.Height()-(srcRect.Y+srcRect.H)) / h
	}

	if dstRect != nil {
		w, h := float32(dst.Width()), float32(dst.Height())
		c.U0 -= float32(dstRect.X) / w
		c.V0 -= float32(dstRect.Y) / h
		c.U1 += float32(dst.Width()-(dstRect.X+dstRect.W)) / w
		c.V1 += float32(dst.Height()-(dstRect.Y+dstRect.H)) / h
	}

	return c
}

// At maps a target pixel center to the sampled texture coordinate.
//
// Parameters:
//   - x, y: target pixel
//   - w, h: target size
//
// Returns:
//   - u, v: texture coordinates
func (c CoordRect) At(x, y, w, h int) (u, v float32) {
	fx := (float32(x) + 0.5) / float32(w)
	fy := (float32(y) + 0.5) / float32(h)
	return c.U0 + fx*(c.U1-c.U0), c.V0 + fy*(c.V1-c.V0)
}

package core

import (
	"encoding/hex"
	"fmt"
	"image"
	"math/bits"
)

const (
	hashCols = 33
	hashRows = 32

	// HashBitWidth is the fixed width of a difference-hash fingerprint
	HashBitWidth = (hashCols - 1) * hashRows
)

// DifferenceHash computes a perceptual fingerprint of the image: the
// image is downsampled to a 33x32 grayscale grid and each bit encodes
// whether intensity rises between horizontally adjacent cells. The
// result is a hex string encoding HashBitWidth bits, suitable for
// approximate duplicate detection via Hamming distance.
func DifferenceHash(img image.Image) string {
	gray := downsampleGray(img, hashCols, hashRows)

	out := make([]byte, HashBitWidth/8)
	i := 0
	for y := 0; y < hashRows; y++ {
		for x := 0; x < hashCols-1; x++ {
			if gray[y][x] < gray[y][x+1] {
				out[i/8] |= 1 << uint(7-i%8)
			}
			i++
		}
	}

	return hex.EncodeToString(out)
}

// HashSimilarity returns 1 - hammingDistance/bitWidth for two fingerprints
// of equal width. Similarity is symmetric in its arguments.
func HashSimilarity(a, b string) (float64, error) {
	rawA, err := hex.DecodeString(a)
	if err != nil {
		return 0, fmt.Errorf("invalid fingerprint %q: %w", a, err)
	}
	rawB, err := hex.DecodeString(b)
	if err != nil {
		return 0, fmt.Errorf("invalid fingerprint %q: %w", b, err)
	}
	if len(rawA) != len(rawB) {
		return 0, fmt.Errorf("fingerprint width mismatch: %d vs %d bits", len(rawA)*8, len(rawB)*8)
	}
	if len(rawA) == 0 {
		return 0, fmt.Errorf("empty fingerprint")
	}

	distance := 0
	for i := range rawA {
		distance += bits.OnesCount8(rawA[i] ^ rawB[i])
	}

	return 1 - float64(distance)/float64(len(rawA)*8), nil
}

// downsampleGray reduces the image to a cols x rows grid of 8-bit
// grayscale intensities using a box average over each source region
func downsampleGray(img image.Image, cols, rows int) [][]float64 {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	grid := make([][]float64, rows)
	for y := 0; y < rows; y++ {
		grid[y] = make([]float64, cols)
		for x := 0; x < cols; x++ {
			x0 := bounds.Min.X + x*width/cols
			x1 := bounds.Min.X + (x+1)*width/cols
			y0 := bounds.Min.Y + y*height/rows
			y1 := bounds.Min.Y + (y+1)*height/rows
			if x1 <= x0 {
				x1 = x0 + 1
			}
			if y1 <= y0 {
				y1 = y0 + 1
			}

			var sum float64
			var count int
			for sy := y0; sy < y1; sy++ {
				for sx := x0; sx < x1; sx++ {
					r, g, b, _ := img.At(clampInt(sx, bounds.Min.X, bounds.Max.X-1), clampInt(sy, bounds.Min.Y, bounds.Max.Y-1)).RGBA()
					sum += 0.299*float64(r>>8) + 0.587*float64(g>>8) + 0.114*float64(b>>8)
					count++
				}
			}
			grid[y][x] = sum / float64(count)
		}
	}

	return grid
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

package utils

type Fl = float32

func MinF(x, y Fl) Fl {
	if x < y {
		return x
	}
	return y
}

func MaxF(x, y Fl) Fl {
	if x > y {
		return x
	}
	return y
}

// Clamp restricts v to [lo, hi].
func Clamp(v, lo, hi Fl) Fl {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func Abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

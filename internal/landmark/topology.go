package landmark

// Connection joins two landmark indices.
type Connection [2]int

// PoseConnections is the 33-point body skeleton.
var PoseConnections = []Connection{
	{0, 1}, {1, 2}, {2, 3}, {3, 7}, {0, 4}, {4, 5}, {5, 6}, {6, 8}, {9, 10},
	{11, 12}, {11, 13}, {13, 15}, {15, 17}, {15, 19}, {15, 21}, {17, 19},
	{12, 14}, {14, 16}, {16, 18}, {16, 20}, {16, 22}, {18, 20},
	{11, 23}, {12, 24}, {23, 24},
	{23, 25}, {24, 26}, {25, 27}, {26, 28}, {27, 29}, {28, 30}, {29, 31}, {30, 32}, {27, 31}, {28, 32},
}

// HandConnections is the 21-point hand skeleton.
var HandConnections = []Connection{
	{0, 1}, {1, 2}, {2, 3}, {3, 4},
	{0, 5}, {5, 6}, {6, 7}, {7, 8},
	{5, 9}, {9, 10}, {10, 11}, {11, 12},
	{9, 13}, {13, 14}, {14, 15}, {15, 16},
	{13, 17}, {0, 17}, {17, 18}, {18, 19}, {19, 20},
}

// FaceContours outlines the face oval, lips, eyes and eyebrows of the face mesh.
var FaceContours = concat(
	chain(10, 338, 297, 332, 284, 251, 389, 356, 454, 323, 361, 288, 397, 365, 379, 378, 400, 377,
		152, 148, 176, 149, 150, 136, 172, 58, 132, 93, 234, 127, 162, 21, 54, 103, 67, 109, 10),
	// lips
	chain(61, 146, 91, 181, 84, 17, 314, 405, 321, 375, 291),
	chain(61, 185, 40, 39, 37, 0, 267, 269, 270, 409, 291),
	chain(78, 95, 88, 178, 87, 14, 317, 402, 318, 324, 308),
	chain(78, 191, 80, 81, 82, 13, 312, 311, 310, 415, 308),
	// left eye
	chain(263, 249, 390, 373, 374, 380, 381, 382, 362),
	chain(263, 466, 388, 387, 386, 385, 384, 398, 362),
	// right eye
	chain(33, 7, 163, 144, 145, 153, 154, 155, 133),
	chain(33, 246, 161, 160, 159, 158, 157, 173, 133),
	// eyebrows
	chain(276, 283, 282, 295, 285),
	chain(300, 293, 334, 296, 336),
	chain(46, 53, 52, 65, 55),
	chain(70, 63, 105, 66, 107),
)

// DefaultSkipPose lists pose points left out of the drawn skeleton: the
// face points (the face mesh is drawn instead), the finger points (hands
// are drawn from the hand model) and the legs, which signing never uses.
var DefaultSkipPose = []int{
	0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10,
	17, 18, 19, 20, 21, 22,
	25, 26, 27, 28, 29, 30, 31, 32,
}

// chain turns a polyline of indices into consecutive connections.
func chain(idx ...int) []Connection {
	out := make([]Connection, 0, len(idx)-1)
	for i := 1; i < len(idx); i++ {
		out = append(out, Connection{idx[i-1], idx[i]})
	}
	return out
}

func concat(parts ...[]Connection) []Connection {
	var out []Connection
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

package board

// The mailbox is a 12x12 grid: the 8x8 board surrounded by two rings of
// Offboard cells, so a knight jump or a ray step from any playable cell
// lands on either a playable cell or a sentinel, never out of the array.
const (
	mailboxWidth = 12
	mailboxSize  = mailboxWidth * mailboxWidth
)

// Mailbox offsets for each step direction.
const (
	stepN  = mailboxWidth
	stepS  = -mailboxWidth
	stepE  = 1
	stepW  = -1
	stepNE = stepN + stepE
	stepNW = stepN + stepW
	stepSE = stepS + stepE
	stepSW = stepS + stepW
)

var (
	knightSteps   = [8]int{2*stepN + stepE, 2*stepN + stepW, 2*stepS + stepE, 2*stepS + stepW, 2*stepE + stepN, 2*stepE + stepS, 2*stepW + stepN, 2*stepW + stepS}
	kingSteps     = [8]int{stepN, stepS, stepE, stepW, stepNE, stepNW, stepSE, stepSW}
	rookSteps     = [4]int{stepN, stepS, stepE, stepW}
	bishopSteps   = [4]int{stepNE, stepNW, stepSE, stepSW}
	pawnCaptureLR = [2][2]int{{stepNW, stepNE}, {stepSW, stepSE}}
	pawnPush      = [2]int{stepN, stepS}
)

// mailboxOf maps a board square to its mailbox cell; squareOf maps a
// mailbox cell back to its board square, NoSquare for padding.
var mailboxOf, squareOf = buildMailboxMaps()

func buildMailboxMaps() ([64]int, [mailboxSize]Square) {
	var toCell [64]int
	var toSquare [mailboxSize]Square
	for i := range toSquare {
		toSquare[i] = NoSquare
	}
	for sq := A1; sq <= H8; sq++ {
		idx := mailboxWidth*(sq.Rank()+2) + sq.File() + 2
		toCell[sq] = idx
		toSquare[idx] = sq
	}
	return toCell, toSquare
}

// MailboxIndex returns the padded-grid cell for a square.
func MailboxIndex(sq Square) int {
	return mailboxOf[sq]
}

// emptyMailbox returns a mailbox with every playable cell empty and
// every padding cell holding the Offboard sentinel.
func emptyMailbox() [mailboxSize]Piece {
	var mb [mailboxSize]Piece
	for i := range mb {
		if squareOf[i] == NoSquare {
			mb[i] = Offboard
		} else {
			mb[i] = NoPiece
		}
	}
	return mb
}

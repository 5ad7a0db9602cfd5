// Package protocol owns the binary application protocol: the four
// fixed-size message layouts, their encoding, and deadline-bounded exact
// reads from TCP streams. All multi-byte integers are big-endian.
package protocol

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/dealer-net/blackjack/domain/blackjack"
)

// MagicCookie prefixes every protocol message so that foreign or corrupt
// traffic can be rejected without crashing.
const MagicCookie uint32 = 0xABCDDCBA

// Message type tags.
const (
	TypeOffer   byte = 0x2
	TypeRequest byte = 0x3
	TypePayload byte = 0x4
)

// Fixed ports and intervals shared by both ends.
const (
	UDPPortOffers = 13122
	OfferInterval = time.Second
	// SocketTimeout bounds every blocking socket operation so that a
	// cancelled context is observed within one interval.
	SocketTimeout = time.Second
)

// Decision strings, exactly five bytes each on the wire.
const (
	DecisionHit   = "Hittt"
	DecisionStand = "Stand"
)

const (
	nameLen     = 32
	decisionLen = 5
)

// Fixed wire sizes of the four message shapes.
const (
	OfferSize       = 4 + 1 + 2 + nameLen  // cookie, type, tcp_port, server_name
	RequestSize     = 4 + 1 + 1 + nameLen  // cookie, type, rounds, client_name
	DecisionSize    = 4 + 1 + decisionLen  // cookie, type, decision text
	CardPayloadSize = 4 + 1 + 1 + 2 + 1    // cookie, type, result, rank, suit
)

// ErrDiscard marks a datagram or frame that is not ours: wrong cookie,
// wrong type tag, or too short to be a complete message. Callers drop
// the buffer and keep reading; it is never a hard failure.
var ErrDiscard = errors.New("protocol: not a protocol message, discard")

// Offer announces a server over UDP broadcast.
type Offer struct {
	TCPPort    uint16
	ServerName string
}

// Request registers a client for a number of rounds, sent once per
// connection right after dial.
type Request struct {
	Rounds     uint8
	ClientName string
}

// CardPayload carries one dealt card or a resolution event from server
// to client. Rank 0 with suit 0 is the "no card" sentinel used by pure
// resolution messages.
type CardPayload struct {
	Result blackjack.Result
	Rank   uint16
	Suit   uint8
}

// Card returns the attached card, or ok=false for the sentinel or an
// out-of-range pair.
func (p CardPayload) Card() (blackjack.Card, bool) {
	if p.Rank == 0 {
		return blackjack.Card{}, false
	}
	card, err := blackjack.NewCard(p.Suit, uint8(p.Rank))
	if err != nil {
		return blackjack.Card{}, false
	}
	return card, true
}

// PayloadFor builds the CardPayload for a card with the given result.
// A nil card produces the sentinel encoding.
func PayloadFor(result blackjack.Result, card *blackjack.Card) CardPayload {
	p := CardPayload{Result: result}
	if card != nil && !card.IsZero() {
		p.Rank = uint16(card.Rank())
		p.Suit = card.Suit()
	}
	return p
}

// padName truncates a name to 32 bytes of UTF-8 and right-pads it with
// zero bytes.
func padName(name string) [nameLen]byte {
	var out [nameLen]byte
	copy(out[:], name)
	return out
}

// decodeName splits at the first zero byte and returns the prefix.
// Invalid UTF-8 is passed through rather than rejected.
func decodeName(raw []byte) string {
	if i := bytes.IndexByte(raw, 0); i >= 0 {
		raw = raw[:i]
	}
	return string(raw)
}

func putHeader(buf []byte, msgType byte) {
	binary.BigEndian.PutUint32(buf[0:4], MagicCookie)
	buf[4] = msgType
}

// checkHeader validates size, cookie and type tag. Any mismatch is
// ErrDiscard: the buffer is noise, not a fault.
func checkHeader(buf []byte, size int, msgType byte) error {
	if len(buf) < size {
		return fmt.Errorf("%w: short buffer %d < %d", ErrDiscard, len(buf), size)
	}
	if binary.BigEndian.Uint32(buf[0:4]) != MagicCookie {
		return fmt.Errorf("%w: bad cookie", ErrDiscard)
	}
	if buf[4] != msgType {
		return fmt.Errorf("%w: unexpected type 0x%x", ErrDiscard, buf[4])
	}
	return nil
}

// EncodeOffer serializes an Offer to its 39-byte wire form.
func EncodeOffer(o Offer) []byte {
	buf := make([]byte, OfferSize)
	putHeader(buf, TypeOffer)
	binary.BigEndian.PutUint16(buf[5:7], o.TCPPort)
	name := padName(o.ServerName)
	copy(buf[7:], name[:])
	return buf
}

// DecodeOffer parses an Offer datagram. Returns ErrDiscard for traffic
// that is not a well-formed offer.
func DecodeOffer(buf []byte) (Offer, error) {
	if err := checkHeader(buf, OfferSize, TypeOffer); err != nil {
		return Offer{}, err
	}
	return Offer{
		TCPPort:    binary.BigEndian.Uint16(buf[5:7]),
		ServerName: decodeName(buf[7:OfferSize]),
	}, nil
}

// EncodeRequest serializes a Request to its 38-byte wire form.
func EncodeRequest(r Request) []byte {
	buf := make([]byte, RequestSize)
	putHeader(buf, TypeRequest)
	buf[5] = r.Rounds
	name := padName(r.ClientName)
	copy(buf[6:], name[:])
	return buf
}

// DecodeRequest parses a Request frame.
func DecodeRequest(buf []byte) (Request, error) {
	if err := checkHeader(buf, RequestSize, TypeRequest); err != nil {
		return Request{}, err
	}
	return Request{
		Rounds:     buf[5],
		ClientName: decodeName(buf[6:RequestSize]),
	}, nil
}

// EncodeDecision serializes a player decision. The text is truncated or
// zero-padded to exactly five bytes; the server normalizes anything that
// is not "Hittt" or "Stand" to a stand.
func EncodeDecision(text string) []byte {
	buf := make([]byte, DecisionSize)
	putHeader(buf, TypePayload)
	copy(buf[5:], text)
	return buf
}

// DecodeDecision parses a Decision frame and returns the raw text with
// trailing zero bytes stripped.
func DecodeDecision(buf []byte) (string, error) {
	if err := checkHeader(buf, DecisionSize, TypePayload); err != nil {
		return "", err
	}
	return string(bytes.TrimRight(buf[5:DecisionSize], "\x00")), nil
}

// EncodeCardPayload serializes a CardPayload to its 9-byte wire form.
func EncodeCardPayload(p CardPayload) []byte {
	buf := make([]byte, CardPayloadSize)
	putHeader(buf, TypePayload)
	buf[5] = byte(p.Result)
	binary.BigEndian.PutUint16(buf[6:8], p.Rank)
	buf[8] = p.Suit
	return buf
}

// DecodeCardPayload parses a CardPayload frame.
func DecodeCardPayload(buf []byte) (CardPayload, error) {
	if err := checkHeader(buf, CardPayloadSize, TypePayload); err != nil {
		return CardPayload{}, err
	}
	return CardPayload{
		Result: blackjack.Result(buf[5]),
		Rank:   binary.BigEndian.Uint16(buf[6:8]),
		Suit:   buf[8],
	}, nil
}

/*
 * Copyright 2025 Ted Dunning
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package sim

import (
	"crypto/aes"
	"encoding/binary"
	"fmt"

	"github.com/brocaar/lorawan"

	"loranode/src/lmac"
)

func (e *Engine) appKey() lorawan.AES128Key {
	return lorawan.AES128Key(e.settings.Identity.AppKey)
}

func (e *Engine) joinEUI() lorawan.EUI64 {
	return lorawan.EUI64(e.settings.Identity.AppEUI)
}

func (e *Engine) sendJoinRequest() error {
	if e.attempts == 0 {
		e.notice(lmac.Joining)
	}
	e.attempts++
	e.devNonce++
	phy := lorawan.PHYPayload{
		MHDR: lorawan.MHDR{MType: lorawan.JoinRequest, Major: lorawan.LoRaWANR1},
		MACPayload: &lorawan.JoinRequestPayload{
			JoinEUI:  e.joinEUI(),
			DevEUI:   lorawan.EUI64(e.settings.Identity.DevEUI),
			DevNonce: e.devNonce,
		},
	}
	if err := phy.SetUplinkJoinMIC(e.appKey()); err != nil {
		return fmt.Errorf("join request mic: %w", err)
	}
	e.notice(lmac.TxStart)
	if err := e.record(true, phy); err != nil {
		return err
	}
	e.advance(e.Airtime(len(e.frames[len(e.frames)-1].Bytes)))
	e.phase = joinRx
	return nil
}

func (e *Engine) joinAcceptWindow() error {
	e.advance(e.cfg.JoinAcceptDelay + e.cfg.RXWindow)
	if e.failLeft > 0 {
		e.failLeft--
		e.notice(lmac.JoinTxComplete)
		if e.attempts >= e.cfg.MaxJoinAttempts {
			e.notice(lmac.JoinFailed)
			e.finish(lmac.TxAborted)
			return nil
		}
		e.phase = joinTx
		return nil
	}

	var netID lorawan.NetID
	netID[0], netID[1], netID[2] = byte(e.cfg.NetID>>16), byte(e.cfg.NetID>>8), byte(e.cfg.NetID)
	var devAddr lorawan.DevAddr
	binary.BigEndian.PutUint32(devAddr[:], e.cfg.DevAddr)
	accept := lorawan.PHYPayload{
		MHDR: lorawan.MHDR{MType: lorawan.JoinAccept, Major: lorawan.LoRaWANR1},
		MACPayload: &lorawan.JoinAcceptPayload{
			JoinNonce: lorawan.JoinNonce(e.rng.Intn(1 << 24)),
			HomeNetID: netID,
			DevAddr:   devAddr,
			RXDelay:   1,
		},
	}
	if err := accept.SetDownlinkJoinMIC(lorawan.JoinRequestType, e.joinEUI(), e.devNonce, e.appKey()); err != nil {
		return fmt.Errorf("join accept mic: %w", err)
	}
	if err := accept.EncryptJoinAcceptPayload(e.appKey()); err != nil {
		return fmt.Errorf("join accept: %w", err)
	}
	if err := e.record(false, accept); err != nil {
		return err
	}
	return e.acceptJoin(e.frames[len(e.frames)-1].Bytes)
}

// acceptJoin is the device side of the join accept.
func (e *Engine) acceptJoin(b []byte) error {
	var phy lorawan.PHYPayload
	if err := phy.UnmarshalBinary(b); err != nil {
		return err
	}
	if err := phy.DecryptJoinAcceptPayload(e.appKey()); err != nil {
		return err
	}
	ok, err := phy.ValidateDownlinkJoinMIC(lorawan.JoinRequestType, e.joinEUI(), e.devNonce, e.appKey())
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("join accept: bad mic")
	}
	accept, ok := phy.MACPayload.(*lorawan.JoinAcceptPayload)
	if !ok {
		return fmt.Errorf("join accept: unexpected payload %T", phy.MACPayload)
	}
	e.nwkSKey, err = sessionKey(0x01, e.appKey(), accept.JoinNonce, accept.HomeNetID, e.devNonce)
	if err != nil {
		return err
	}
	e.appSKey, err = sessionKey(0x02, e.appKey(), accept.JoinNonce, accept.HomeNetID, e.devNonce)
	if err != nil {
		return err
	}
	e.devAddr = accept.DevAddr
	e.joined = true
	e.fCnt = 0
	e.fCntDown = 0
	e.emit(lmac.JoinedEvent{
		At:      e.Now(),
		NetID:   uint32(accept.HomeNetID[0])<<16 | uint32(accept.HomeNetID[1])<<8 | uint32(accept.HomeNetID[2]),
		DevAddr: binary.BigEndian.Uint32(accept.DevAddr[:]),
	})
	e.phase = dataTx
	return nil
}

/*
sessionKey derives a LoRaWAN 1.0 session key:

	key = aes128_encrypt(AppKey, typ | JoinNonce | NetID | DevNonce | pad16)

with 0x01 for the network session key and 0x02 for the application session
key. All fields are little-endian as they appear on the air.
*/
func sessionKey(typ byte, appKey lorawan.AES128Key, joinNonce lorawan.JoinNonce, netID lorawan.NetID, devNonce lorawan.DevNonce) (lorawan.AES128Key, error) {
	var key lorawan.AES128Key
	b := make([]byte, 16)
	b[0] = typ
	nonce, err := joinNonce.MarshalBinary()
	if err != nil {
		return key, err
	}
	net, err := netID.MarshalBinary()
	if err != nil {
		return key, err
	}
	dev, err := devNonce.MarshalBinary()
	if err != nil {
		return key, err
	}
	copy(b[1:4], nonce)
	copy(b[4:7], net)
	copy(b[7:9], dev)

	block, err := aes.NewCipher(appKey[:])
	if err != nil {
		return key, err
	}
	block.Encrypt(key[:], b)
	return key, nil
}

func (e *Engine) sendData() error {
	mtype := lorawan.UnconfirmedDataUp
	if e.confirmed {
		mtype = lorawan.ConfirmedDataUp
	}
	port := e.port
	phy := lorawan.PHYPayload{
		MHDR: lorawan.MHDR{MType: mtype, Major: lorawan.LoRaWANR1},
		MACPayload: &lorawan.MACPayload{
			FHDR: lorawan.FHDR{
				DevAddr: e.devAddr,
				FCnt:    e.fCnt,
			},
			FPort:      &port,
			FRMPayload: []lorawan.Payload{&lorawan.DataPayload{Bytes: e.data}},
		},
	}
	if err := phy.EncryptFRMPayload(e.appSKey); err != nil {
		return fmt.Errorf("uplink: %w", err)
	}
	if err := phy.SetUplinkDataMIC(lorawan.LoRaWAN1_0, 0, 0, 0, e.nwkSKey, e.nwkSKey); err != nil {
		return fmt.Errorf("uplink mic: %w", err)
	}
	e.notice(lmac.TxStart)
	if err := e.record(true, phy); err != nil {
		return err
	}
	e.advance(e.Airtime(len(e.frames[len(e.frames)-1].Bytes)))
	e.fCnt++
	e.phase = dataRx
	return nil
}

// receiveWindows waits out RX1 and, when nothing arrives, RX2.
func (e *Engine) receiveWindows() {
	e.advance(e.cfg.RX1Delay + e.cfg.RXWindow)
	if !e.confirmed {
		e.advance(e.cfg.RX1Delay + e.cfg.RXWindow)
		e.finish(lmac.TxDone)
		return
	}
	if e.rng.Float64() >= e.cfg.AckRate {
		e.advance(e.cfg.RX1Delay + e.cfg.RXWindow)
		e.finish(lmac.TxNoAck)
		return
	}
	if err := e.sendAck(); err != nil {
		e.finish(lmac.TxNoAck)
		return
	}
	e.finish(lmac.TxAcked)
}

func (e *Engine) sendAck() error {
	phy := lorawan.PHYPayload{
		MHDR: lorawan.MHDR{MType: lorawan.UnconfirmedDataDown, Major: lorawan.LoRaWANR1},
		MACPayload: &lorawan.MACPayload{
			FHDR: lorawan.FHDR{
				DevAddr: e.devAddr,
				FCtrl:   lorawan.FCtrl{ACK: true},
				FCnt:    e.fCntDown,
			},
		},
	}
	if err := phy.SetDownlinkDataMIC(lorawan.LoRaWAN1_0, 0, e.nwkSKey); err != nil {
		return err
	}
	e.fCntDown++
	return e.record(false, phy)
}

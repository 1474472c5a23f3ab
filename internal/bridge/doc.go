// Package bridge mirrors a receiver's Audyssey settings onto an MQTT
// broker so home automation systems can read and change them.
//
// # Topics
//
// All topics live under <prefix>/<device>/audyssey/, where <device> is
// derived from the receiver's model name (e.g. "avr-x4500h"):
//
//	multeq        retained  MultEQ curve label ("Off", "Flat", "L/R Bypass", "Reference")
//	dynamiceq     retained  "on" or "off"
//	reflevoffset  retained  Offset label ("0dB".."+15dB"), "N/A" while Dynamic EQ is off
//	dynamicvol    retained  Dynamic Volume label ("Off", "Light", "Medium", "Heavy")
//	available     retained  "online" or "offline"
//
// Each setting also has a <setting>/set command topic accepting the
// same values. Accepted writes republish the new state immediately;
// rejected ones (unknown labels, the offset while Dynamic EQ is off, or
// a receiver refusal) are logged and leave the state topics untouched.
//
// # Availability
//
// The available topic reflects both ends of the bridge: it flips to
// offline when receiver polls fail and back to online when they
// recover, and the MQTT session's last-will publishes offline if the
// bridge process dies without disconnecting.
//
// # Usage
//
//	rc := receiver.NewClient("192.168.1.34", receiver.LegacyPort)
//	b, err := bridge.New(&bridge.Config{
//	    Broker:   "tcp://127.0.0.1:1883",
//	    Interval: 30 * time.Second,
//	}, rc)
//	if err != nil {
//	    return err
//	}
//	return b.Start() // blocks until SIGINT/SIGTERM
//
// Start polls the receiver on the configured interval and handles
// broker reconnects, re-subscribing and republishing the full state on
// every new session.
package bridge

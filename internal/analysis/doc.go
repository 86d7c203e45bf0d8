// Package analysis characterises recorded channels in the frequency
// domain: tower modes, rotor harmonics and pitch activity show up as
// spectral peaks.
//
//	s, err := analysis.Compute(towerX, dt)
//	peaks := s.Peaks(3, 0.01)
package analysis

/*
 * atomicdata.go, part of trajimg.
 *
 * Copyright 2025 The trajimg authors.
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

package chem

import "strings"

// A map for assigning mass to elements.
// Note that just common "bio-elements" are present
var symbolMass = map[string]float64{
	"H":  1.0,
	"C":  12.01,
	"O":  16.00,
	"N":  14.01,
	"P":  30.97,
	"S":  32.06,
	"Se": 78.96,
	"K":  39.1,
	"Ca": 40.08,
	"Mg": 24.30,
	"Cl": 35.45,
	"Na": 22.99,
	"Cu": 63.55,
	"Zn": 65.38,
	"Co": 58.93,
	"Fe": 55.84,
	"Mn": 54.94,
	"Cr": 51.996,
	"Si": 28.08,
	"Be": 9.012,
	"F":  18.998,
	"Br": 79.904,
	"I":  126.90,
	"Ni": 58.69,
	"Li": 6.94,
}

// Covalent radii, from Cordero et al., 2008 (DOI:10.1039/B801115J)
var symbolCovrad = map[string]float64{
	"H":  0.4, // 0.31 altered, since H has only one bond the extra ones get pruned later.
	"C":  0.76,
	"O":  0.66,
	"N":  0.71,
	"P":  1.07,
	"S":  1.05,
	"Se": 1.2,
	"K":  2.03,
	"Ca": 1.76,
	"Mg": 1.41,
	"Cl": 1.02,
	"Na": 1.66,
	"Cu": 1.32,
	"Zn": 1.22,
	"Co": 1.5,
	"Fe": 1.52,
	"Mn": 1.61,
	"Cr": 1.39,
	"Si": 1.11,
	"Be": 0.96,
	"F":  0.57,
	"Br": 1.2,
	"I":  1.39,
	"Ni": 1.24,
	"Li": 1.28,
}

// van der Waals radii, from 10.1021/j100785a001 and 10.1021/jp8111556
// metal radii from 10.1023/A:1011625728803
var symbolVdwrad = map[string]float64{
	"H":  1.10,
	"C":  1.70,
	"O":  1.52,
	"N":  1.55,
	"P":  1.80,
	"S":  1.80,
	"Se": 1.90,
	"K":  2.75,
	"Ca": 2.31,
	"Mg": 1.73,
	"Cl": 1.75,
	"Na": 2.27,
	"Cu": 2.00,
	"Zn": 2.02,
	"Co": 1.95,
	"Fe": 1.96,
	"Mn": 1.96,
	"Cr": 1.97,
	"Si": 2.10,
	"Be": 1.53,
	"F":  1.47,
	"Br": 1.83,
	"I":  1.98,
	"Ni": 1.63,
	"Li": 1.82,
}

// Maximum number of bonds for an element. A missing
// element, or 0, means that it is not checked.
var symbolMaxBonds = map[string]int{
	"H":  1, //this is the only one truly important.
	"C":  4,
	"O":  2,
	"F":  1,
	"Cl": 1,
	"Br": 1,
	"I":  1,
}

// Mass returns the atomic mass of the element, or 0 if unknown.
func Mass(symbol string) float64 { return symbolMass[symbol] }

// CovalentRadius returns the covalent radius of the element in A, or 0 if unknown.
func CovalentRadius(symbol string) float64 { return symbolCovrad[symbol] }

// VdwRadius returns the van der Waals radius of the element in A. Unknown
// elements get the carbon radius.
func VdwRadius(symbol string) float64 {
	if r, ok := symbolVdwrad[symbol]; ok {
		return r
	}
	return symbolVdwrad["C"]
}

// NormalizeSymbol turns "FE", "fe" or " Fe" into "Fe".
func NormalizeSymbol(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}

// Residue classes used by the selection language.
var proteinResidues = map[string]bool{
	"ALA": true, "ARG": true, "ASN": true, "ASP": true, "CYS": true, "GLN": true,
	"GLU": true, "GLY": true, "HIS": true, "ILE": true, "LEU": true, "LYS": true,
	"MET": true, "PHE": true, "PRO": true, "SER": true, "THR": true, "TRP": true,
	"TYR": true, "VAL": true, "SEC": true, "PYL": true, "MSE": true,
	"HID": true, "HIE": true, "HIP": true, "HSD": true, "HSE": true, "HSP": true,
	"CYX": true, "CYM": true, "ASH": true, "GLH": true, "LYN": true,
	"ACE": true, "NME": true, "NMA": true,
}

var nucleicResidues = map[string]bool{
	"A": true, "C": true, "G": true, "U": true, "T": true, "I": true,
	"DA": true, "DC": true, "DG": true, "DT": true, "DU": true, "DI": true,
	"RA": true, "RC": true, "RG": true, "RU": true,
	"A3": true, "A5": true, "C3": true, "C5": true, "G3": true, "G5": true, "U3": true, "U5": true,
	"DA3": true, "DA5": true, "DC3": true, "DC5": true, "DG3": true, "DG5": true, "DT3": true, "DT5": true,
	"ADE": true, "CYT": true, "GUA": true, "THY": true, "URA": true,
}

var waterResidues = map[string]bool{
	"HOH": true, "WAT": true, "SOL": true, "H2O": true, "DOD": true,
	"TIP": true, "TIP3": true, "TIP4": true, "TIP5": true, "T3P": true, "T4P": true, "SPC": true,
}

var ionResidues = map[string]bool{
	"NA": true, "CL": true, "K": true, "MG": true, "CA": true, "ZN": true, "FE": true,
	"MN": true, "CU": true, "CO": true, "NI": true, "CD": true, "LI": true, "RB": true,
	"CS": true, "BR": true, "IOD": true, "F": true, "SOD": true, "CLA": true, "POT": true,
	"CAL": true, "NA+": true, "CL-": true, "K+": true,
}

var proteinBackbone = map[string]bool{"N": true, "CA": true, "C": true, "O": true, "OXT": true}

var nucleicBackbone = map[string]bool{
	"P": true, "OP1": true, "OP2": true, "O1P": true, "O2P": true, "O5'": true,
	"C5'": true, "C4'": true, "C3'": true, "O3'": true,
	"O5*": true, "C5*": true, "C4*": true, "C3*": true, "O3*": true,
}

// IsProtein reports whether the residue name is an amino acid.
func IsProtein(resname string) bool { return proteinResidues[strings.ToUpper(resname)] }

// IsNucleic reports whether the residue name is a nucleotide.
func IsNucleic(resname string) bool { return nucleicResidues[strings.ToUpper(resname)] }

// IsWater reports whether the residue name is a water molecule.
func IsWater(resname string) bool { return waterResidues[strings.ToUpper(resname)] }

// IsIon reports whether the residue name is a monoatomic ion.
func IsIon(resname string) bool { return ionResidues[strings.ToUpper(resname)] }

// IsBackbone reports whether the atom belongs to a protein or nucleic acid backbone.
func IsBackbone(A *Atom) bool {
	if IsProtein(A.ResName) {
		return proteinBackbone[A.Name]
	}
	if IsNucleic(A.ResName) {
		return nucleicBackbone[A.Name]
	}
	return false
}

// TraceAtom reports whether the atom is the one used to draw the chain trace
// of its residue (CA for amino acids, P for nucleotides).
func TraceAtom(A *Atom) bool {
	switch {
	case IsProtein(A.ResName):
		return A.Name == "CA"
	case IsNucleic(A.ResName):
		return A.Name == "P"
	}
	return false
}

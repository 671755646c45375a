/*
 * doc.go, part of trajimg.
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

/*
Package chem provides the atom and topology structures used by trajimg,
readers for PDB and XYZ files, a small atom selection language, distance-based
bond assignment and the interfaces implemented by the trajectory readers.

Coordinates are kept apart from the topology, in v3.Matrix values (one row per
atom), so that a single topology can be shared by all the frames of a trajectory.

Selections

The selection language understands the keywords all (or *), none, protein,
nucleic, backbone, sidechain, water, ion, hetero, hydrogen and heavy; element
terms such as _C or _Fe; residue names (ALA); residue numbers (42) and ranges
(10-20); chain (:A) and atom name (.CA) suffixes, which may be combined
(10-20:A.CA); and the operators not, and, or, with parentheses for grouping.
Keywords and residue names are case-insensitive.
*/
package chem
